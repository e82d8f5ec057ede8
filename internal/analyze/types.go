// Package analyze plans source chunks, dispatches them to an LLM provider
// under rate-limit pacing, and collects the per-section analysis output.
package analyze

import (
	"github.com/yuyudhan/repo-analyzer/internal/collect"
)

// Action says how a file's content is rendered into a chunk.
type Action int

const (
	// ActionRaw includes the file verbatim.
	ActionRaw Action = iota
	// ActionCompress elides deeply nested regions first.
	ActionCompress
	// ActionTruncate hard-caps the file at MaxLines.
	ActionTruncate
)

func (a Action) String() string {
	switch a {
	case ActionRaw:
		return "raw"
	case ActionCompress:
		return "compress"
	case ActionTruncate:
		return "truncate"
	default:
		return "unknown"
	}
}

// FilePlan pairs a collected file with its rendering decision.
type FilePlan struct {
	Record collect.FileRecord
	Action Action
	// Depth is the maximum indentation depth kept when Action is
	// ActionCompress.
	Depth int
	// MaxLines caps the rendered content when Action is ActionTruncate.
	MaxLines int

	// Rendered is the content after the action is applied.
	Rendered      string
	RenderedLines int
	OriginalLines int
}

// Chunk is one unit of dispatch: a group of files sent to the provider in
// a single request.
type Chunk struct {
	Index int // 1-based
	Files []FilePlan
	Lines int // sum of rendered lines
}

// ChunkState tracks a chunk through the dispatch loop.
type ChunkState int

const (
	StatePending ChunkState = iota
	StateInFlight
	StateSucceeded
	StateFailed
	StateAborted
)

func (s ChunkState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInFlight:
		return "in-flight"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ChunkOutcome records the terminal result of one chunk's dispatch.
type ChunkOutcome struct {
	Index      int
	Files      []string
	State      ChunkState
	Attempts   int
	TokensUsed int
	FromCache  bool
	Err        error
}

// SectionNames is the fixed report section order. Section content from
// chunk responses is merged under these headings.
var SectionNames = []string{
	"Purpose",
	"Repository Overview & Metrics",
	"Technology Stack Analysis",
	"Architectural Analysis",
	"Business Domain & Functionality",
	"Implementation Deep Dive",
	"Infrastructure & Deployment",
	"Development Workflow",
	"Security & Compliance",
	"Performance & Optimization",
	"Maintenance & Evolution",
}

// Result accumulates per-section analysis fragments across chunks,
// preserving the fixed section order.
type Result struct {
	sections map[string][]string
}

// NewResult returns an empty Result.
func NewResult() *Result {
	return &Result{sections: make(map[string][]string)}
}

// Append adds a fragment under the named section. Unknown section names
// are folded into "Implementation Deep Dive" so no model output is lost.
func (r *Result) Append(section, fragment string) {
	if fragment == "" {
		return
	}
	if !knownSection(section) {
		section = "Implementation Deep Dive"
	}
	r.sections[section] = append(r.sections[section], fragment)
}

// Get returns the fragments collected under a section.
func (r *Result) Get(section string) []string {
	return r.sections[section]
}

// Empty reports whether no fragments were collected at all.
func (r *Result) Empty() bool {
	for _, frags := range r.sections {
		if len(frags) > 0 {
			return false
		}
	}
	return true
}

func knownSection(name string) bool {
	for _, s := range SectionNames {
		if s == name {
			return true
		}
	}
	return false
}
