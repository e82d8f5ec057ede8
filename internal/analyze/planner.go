package analyze

import (
	"sort"

	"github.com/yuyudhan/repo-analyzer/internal/collect"
	"github.com/yuyudhan/repo-analyzer/internal/compress"
	"github.com/yuyudhan/repo-analyzer/internal/redact"
)

// PlanOptions controls chunk construction.
type PlanOptions struct {
	// FilesPerChunk caps the number of files per chunk.
	FilesPerChunk int
	// ChunkLines is the soft per-chunk line budget. A chunk closes once
	// adding the next file would exceed it, unless the chunk is empty.
	ChunkLines int
	// MaxFileLines hard-caps a single file; longer files are truncated.
	MaxFileLines int
	// UseCompression enables indentation-based elision for files whose
	// raw size exceeds the chunk budget.
	UseCompression bool
	// MaxIndentation is the deepest indentation level kept when
	// compressing.
	MaxIndentation int
}

func (o *PlanOptions) defaults() {
	if o.FilesPerChunk <= 0 {
		o.FilesPerChunk = 8
	}
	if o.ChunkLines <= 0 {
		o.ChunkLines = 150
	}
	if o.MaxFileLines <= 0 {
		o.MaxFileLines = 15000
	}
	if o.MaxIndentation <= 0 {
		o.MaxIndentation = 3
	}
}

// Plan orders files by priority class, decides per-file rendering, and
// packs them into chunks. Returns collect.ErrNoSourceFiles when there is
// nothing to analyze.
func Plan(files []collect.FileRecord, opts PlanOptions) ([]Chunk, error) {
	opts.defaults()
	if len(files) == 0 {
		return nil, collect.ErrNoSourceFiles
	}

	// Priority classes first, stable path order within a class.
	ordered := make([]collect.FileRecord, len(files))
	copy(ordered, files)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority.Rank() < ordered[j].Priority.Rank()
		}
		return ordered[i].Path < ordered[j].Path
	})

	plans := make([]FilePlan, 0, len(ordered))
	for _, rec := range ordered {
		plans = append(plans, planFile(rec, opts))
	}

	var chunks []Chunk
	var cur Chunk
	flush := func() {
		if len(cur.Files) > 0 {
			cur.Index = len(chunks) + 1
			chunks = append(chunks, cur)
			cur = Chunk{}
		}
	}
	for _, fp := range plans {
		// A file that alone exceeds the budget gets its own chunk so it
		// cannot starve its neighbors.
		if fp.RenderedLines > opts.ChunkLines {
			flush()
			chunks = append(chunks, Chunk{
				Index: len(chunks) + 1,
				Files: []FilePlan{fp},
				Lines: fp.RenderedLines,
			})
			continue
		}
		if len(cur.Files) >= opts.FilesPerChunk ||
			(len(cur.Files) > 0 && cur.Lines+fp.RenderedLines > opts.ChunkLines) {
			flush()
		}
		cur.Files = append(cur.Files, fp)
		cur.Lines += fp.RenderedLines
	}
	flush()
	return chunks, nil
}

// planFile decides how a single file is rendered. Secrets are scrubbed
// before anything else so no downstream path can leak them to a provider.
// Compression is applied when the raw file would not fit the chunk budget;
// truncation is the fallback when even compressed output exceeds the hard
// cap.
func planFile(rec collect.FileRecord, opts PlanOptions) FilePlan {
	content := redact.Secrets(rec.Content)
	fp := FilePlan{
		Record:        rec,
		Action:        ActionRaw,
		Rendered:      content,
		RenderedLines: rec.Lines,
		OriginalLines: rec.Lines,
	}

	if opts.UseCompression && rec.Lines > opts.ChunkLines {
		compressed := compress.Compress(content, opts.MaxIndentation)
		lines := compress.CountLines(compressed)
		if lines < rec.Lines {
			fp.Action = ActionCompress
			fp.Depth = opts.MaxIndentation
			fp.Rendered = compressed
			fp.RenderedLines = lines
		}
	}

	if fp.RenderedLines > opts.MaxFileLines {
		fp.Action = ActionTruncate
		fp.MaxLines = opts.MaxFileLines
		fp.Rendered = compress.Truncate(fp.Rendered, opts.MaxFileLines)
		fp.RenderedLines = compress.CountLines(fp.Rendered)
	}
	return fp
}
