// Package envscan discovers environment variable templates in a repository
// (.env.example and friends) so the report can list required configuration
// without touching live secret files.
package envscan

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// templateNames are env files safe to read: templates and samples, never
// live .env files.
var templateNames = map[string]bool{
	".env.example":  true,
	".env.sample":   true,
	".env.template": true,
	".env.dist":     true,
	"env.example":   true,
	"example.env":   true,
	"sample.env":    true,
}

// Var is one declared environment variable.
type Var struct {
	Key     string
	Value   string // the template's placeholder value, may be empty
	Comment string // trailing or preceding comment, if any
	File    string // slash-separated path relative to the scan root
}

// Scan walks root for env template files and returns their variables in
// file order, then declaration order. Unreadable files are skipped.
func Scan(root string) []Var {
	var files []string
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "node_modules", "vendor":
				return filepath.SkipDir
			}
			return nil
		}
		if templateNames[strings.ToLower(d.Name())] {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)

	var vars []Var
	for _, path := range files {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		vars = append(vars, parseFile(path, filepath.ToSlash(rel))...)
	}
	return vars
}

func parseFile(path, rel string) []Var {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var vars []Var
	var pending string // most recent comment line
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			pending = ""
			continue
		}
		if strings.HasPrefix(line, "#") {
			pending = strings.TrimSpace(strings.TrimPrefix(line, "#"))
			continue
		}
		key, value, comment, ok := parseLine(line)
		if !ok {
			pending = ""
			continue
		}
		if comment == "" {
			comment = pending
		}
		pending = ""
		vars = append(vars, Var{Key: key, Value: value, Comment: comment, File: rel})
	}
	return vars
}

// parseLine handles KEY=value with optional "export " prefix, quoting, and
// trailing comments.
func parseLine(line string) (key, value, comment string, ok bool) {
	line = strings.TrimPrefix(line, "export ")
	eq := strings.Index(line, "=")
	if eq <= 0 {
		return "", "", "", false
	}
	key = strings.TrimSpace(line[:eq])
	if !validKey(key) {
		return "", "", "", false
	}
	rest := strings.TrimSpace(line[eq+1:])

	switch {
	case strings.HasPrefix(rest, `"`):
		if end := strings.Index(rest[1:], `"`); end >= 0 {
			value = rest[1 : end+1]
			comment = trailingComment(rest[end+2:])
		} else {
			value = strings.TrimPrefix(rest, `"`)
		}
	case strings.HasPrefix(rest, `'`):
		if end := strings.Index(rest[1:], `'`); end >= 0 {
			value = rest[1 : end+1]
			comment = trailingComment(rest[end+2:])
		} else {
			value = strings.TrimPrefix(rest, `'`)
		}
	default:
		if idx := strings.Index(rest, " #"); idx >= 0 {
			value = strings.TrimSpace(rest[:idx])
			comment = trailingComment(rest[idx:])
		} else {
			value = rest
		}
	}
	return key, value, comment, true
}

func trailingComment(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return strings.TrimSpace(strings.TrimPrefix(s, "#"))
	}
	return ""
}

func validKey(key string) bool {
	if key == "" {
		return false
	}
	for i, r := range key {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
