// Package collect walks a repository tree and gathers the source files
// eligible for analysis, with language and priority metadata attached.
package collect

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/yuyudhan/repo-analyzer/internal/lang"
)

// ErrNoSourceFiles is returned when a repository contains no eligible files.
// Callers must be able to distinguish this from a run that never happened.
var ErrNoSourceFiles = errors.New("no eligible source files found")

// FileRecord is one collected file. Immutable once created.
type FileRecord struct {
	Path     string // slash-separated, relative to the repo root
	Lang     string
	Priority lang.Class
	Lines    int
	Content  string
}

// Options controls collection behavior.
type Options struct {
	// MaxFileBytes skips files larger than this many bytes. Zero means
	// the default of 2 MiB; oversized text files are line-capped later,
	// this guard only keeps huge blobs out of memory.
	MaxFileBytes int64
}

const defaultMaxFileBytes = 2 << 20

// ignoreDirs are directory names never descended into.
var ignoreDirs = map[string]bool{
	"node_modules": true, "__pycache__": true, ".git": true, "target": true,
	"dist": true, "build": true, "vendor": true, ".cargo": true, "bin": true,
	"obj": true, "out": true, "debug": true, "release": true, ".vscode": true,
	".idea": true, ".vs": true, "tmp": true, ".tmp": true, "cache": true,
	".cache": true, ".pytest_cache": true, "coverage": true, ".nyc_output": true,
	".next": true, ".nuxt": true, ".angular": true, ".svelte-kit": true,
	"pods": true, "carthage": true, "xcuserdata": true, "logs": true,
	".terraform": true, ".vagrant": true, ".docker": true,
}

// ignoreExts are file extensions never collected (binaries, media, archives).
var ignoreExts = map[string]bool{
	".pyc": true, ".pyo": true, ".class": true, ".o": true, ".obj": true,
	".so": true, ".dll": true, ".dylib": true, ".exe": true, ".bin": true,
	".a": true, ".lib": true, ".pdb": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".rar": true, ".7z": true, ".jar": true, ".war": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".svg": true, ".ico": true, ".webp": true, ".tiff": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wav": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".log": true, ".swp": true, ".bak": true, ".orig": true, ".lock": true,
	".map": true,
}

// ignoreNames are specific file names never collected.
var ignoreNames = map[string]bool{
	"package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	"cargo.lock": true, "composer.lock": true, "pipfile.lock": true,
	"poetry.lock": true, "gemfile.lock": true, "go.sum": true,
	".ds_store": true, "thumbs.db": true, "desktop.ini": true,
}

// keepDotfiles are dotfiles that carry analyzable configuration.
var keepDotfiles = map[string]bool{
	".env.example": true, ".env.sample": true, ".env.template": true,
	".gitignore": true, ".gitattributes": true, ".dockerignore": true,
	".editorconfig": true, ".eslintrc.js": true, ".eslintrc.json": true,
	".prettierrc": true, ".babelrc": true, ".nvmrc": true,
	".golangci.yml": true, ".golangci.yaml": true, ".gitlab-ci.yml": true,
}

// Collect walks root and returns eligible source files in stable lexical
// order. Returns ErrNoSourceFiles when the walk finds nothing eligible.
func Collect(root string, opts Options) ([]FileRecord, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("repository path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository path %s is not a directory", root)
	}

	maxBytes := opts.MaxFileBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxFileBytes
	}

	var records []FileRecord
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := strings.ToLower(d.Name())
		if d.IsDir() {
			if path != root && ignoreDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if skipFile(name) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !lang.IsSource(rel) {
			return nil
		}

		fi, err := d.Info()
		if err != nil || fi.Size() > maxBytes {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil // unreadable files are skipped, not fatal
		}
		content := string(data)
		if !isText(content) {
			return nil
		}

		records = append(records, FileRecord{
			Path:     rel,
			Lang:     lang.Tag(rel),
			Priority: lang.Priority(rel),
			Lines:    countLines(content),
			Content:  content,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	if len(records) == 0 {
		return nil, ErrNoSourceFiles
	}
	return records, nil
}

func skipFile(name string) bool {
	if ignoreNames[name] {
		return true
	}
	if ignoreExts[filepath.Ext(name)] {
		return true
	}
	// Live .env files may hold real credentials; only templates pass.
	if strings.HasPrefix(name, ".env") && !keepDotfiles[name] {
		return true
	}
	if strings.HasPrefix(name, ".") && !keepDotfiles[name] {
		return true
	}
	return false
}

// isText rejects binary content that slipped past the extension filters.
func isText(content string) bool {
	if !utf8.ValidString(content) {
		return false
	}
	return !strings.ContainsRune(content, '\x00')
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
