package report

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/yuyudhan/repo-analyzer/internal/analyze"
)

// Summary is the machine-readable mirror of the markdown report. Section
// keys match the markdown headings exactly.
type Summary struct {
	RunID         string            `json:"runId"`
	Repo          string            `json:"repo"`
	Source        string            `json:"source"`
	Timestamp     string            `json:"timestamp"`
	Mode          string            `json:"mode"`
	Provider      string            `json:"provider"`
	Model         string            `json:"model"`
	FilesAnalyzed int               `json:"filesAnalyzed"`
	TotalLines    int               `json:"totalLines"`
	Chunks        ChunkCounts       `json:"chunks"`
	TokensUsed    int               `json:"tokensUsed"`
	Sections      map[string]string `json:"sections"`
	ChunkOutcomes []OutcomeRecord   `json:"chunkOutcomes"`
}

// ChunkCounts aggregates chunk terminal states.
type ChunkCounts struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Aborted   int `json:"aborted"`
}

// OutcomeRecord is one chunk's terminal state, serializable.
type OutcomeRecord struct {
	Chunk     int      `json:"chunk"`
	Files     []string `json:"files"`
	State     string   `json:"state"`
	Attempts  int      `json:"attempts"`
	FromCache bool     `json:"fromCache,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// BuildSummary converts a run record into its JSON form. Sections with no
// content carry an empty string so consumers see the full key set.
func BuildSummary(r *analyze.RunReport) Summary {
	s := Summary{
		RunID:         r.RunID,
		Repo:          r.RepoName,
		Source:        r.Source,
		Timestamp:     r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		Mode:          string(r.Mode),
		Provider:      r.Provider,
		Model:         r.Model,
		FilesAnalyzed: r.FilesAnalyzed,
		TotalLines:    r.TotalLines,
		Chunks: ChunkCounts{
			Total:     r.ChunkCount,
			Succeeded: r.Succeeded(),
			Failed:    r.Failed(),
			Aborted:   r.Aborted(),
		},
		TokensUsed: r.TokensUsed,
		Sections:   make(map[string]string, len(analyze.SectionNames)),
	}
	for _, section := range analyze.SectionNames {
		s.Sections[section] = strings.TrimSpace(strings.Join(r.Result.Get(section), "\n\n"))
	}
	for _, out := range r.Outcomes {
		rec := OutcomeRecord{
			Chunk:     out.Index,
			Files:     out.Files,
			State:     out.State.String(),
			Attempts:  out.Attempts,
			FromCache: out.FromCache,
		}
		if out.Err != nil {
			rec.Error = out.Err.Error()
		}
		s.ChunkOutcomes = append(s.ChunkOutcomes, rec)
	}
	return s
}

// JSONWriter emits the summary as indented JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, r *analyze.RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildSummary(r))
}
