package lang

import (
	"path/filepath"
	"strings"
)

// Class is the priority classification of a file. Entry points and
// configuration files are analyzed first so that an interrupted run has
// already covered the highest-value files.
type Class int

const (
	ClassEntryPoint Class = iota
	ClassConfig
	ClassInfra
	ClassDocs
	ClassOther
)

func (c Class) String() string {
	switch c {
	case ClassEntryPoint:
		return "entry-point"
	case ClassConfig:
		return "config"
	case ClassInfra:
		return "infra"
	case ClassDocs:
		return "docs"
	default:
		return "other"
	}
}

// Rank returns the submission order rank (lower is submitted earlier).
func (c Class) Rank() int { return int(c) }

// sourceExts maps source file extensions to markdown fence language tags.
var sourceExts = map[string]string{
	".py":     "python",
	".pyi":    "python",
	".js":     "javascript",
	".jsx":    "jsx",
	".mjs":    "javascript",
	".cjs":    "javascript",
	".ts":     "typescript",
	".tsx":    "tsx",
	".go":     "go",
	".mod":    "go",
	".rs":     "rust",
	".java":   "java",
	".kt":     "kotlin",
	".scala":  "scala",
	".c":      "c",
	".h":      "c",
	".cc":     "cpp",
	".cpp":    "cpp",
	".hpp":    "cpp",
	".cs":     "csharp",
	".rb":     "ruby",
	".php":    "php",
	".swift":  "swift",
	".sh":     "bash",
	".bash":   "bash",
	".zsh":    "bash",
	".sql":    "sql",
	".html":   "html",
	".css":    "css",
	".scss":   "scss",
	".vue":    "vue",
	".svelte": "svelte",
	".ex":     "elixir",
	".exs":    "elixir",
	".erl":    "erlang",
	".clj":    "clojure",
	".lua":    "lua",
	".r":      "r",
	".pl":     "perl",
	".yaml":   "yaml",
	".yml":    "yaml",
	".toml":   "toml",
	".json":   "json",
	".xml":    "xml",
	".proto":  "protobuf",
	".tf":     "hcl",
	".hcl":    "hcl",
	".md":     "markdown",
	".rst":    "rst",
	".txt":    "text",
	".ini":    "ini",
	".cfg":    "ini",
	".gradle": "groovy",
}

// noExtSource is the set of extension-less files that still count as source.
var noExtSource = map[string]string{
	"dockerfile":  "dockerfile",
	"makefile":    "makefile",
	"rakefile":    "ruby",
	"gemfile":     "ruby",
	"procfile":    "text",
	"jenkinsfile": "groovy",
	"vagrantfile": "ruby",
	"license":     "text",
	"readme":      "markdown",
}

// entryPointNames are well-known application entry files.
var entryPointNames = map[string]bool{
	"main.go":           true,
	"main.py":           true,
	"app.py":            true,
	"wsgi.py":           true,
	"asgi.py":           true,
	"manage.py":         true,
	"main.rs":           true,
	"lib.rs":            true,
	"index.js":          true,
	"index.ts":          true,
	"app.js":            true,
	"app.ts":            true,
	"server.js":         true,
	"server.ts":         true,
	"main.java":         true,
	"application.java":  true,
	"main.c":            true,
	"main.cpp":          true,
	"program.cs":        true,
	"appdelegate.swift": true,
	"mainactivity.kt":   true,
	"mainactivity.java": true,
}

// configNames are dependency manifests and tool configuration files.
var configNames = map[string]bool{
	"package.json":       true,
	"tsconfig.json":      true,
	"pyproject.toml":     true,
	"setup.py":           true,
	"requirements.txt":   true,
	"pipfile":            true,
	"go.mod":             true,
	"cargo.toml":         true,
	"pom.xml":            true,
	"build.gradle":       true,
	"settings.gradle":    true,
	"composer.json":      true,
	"gemfile":            true,
	"cmakelists.txt":     true,
	"makefile":           true,
	"webpack.config.js":  true,
	"vite.config.js":     true,
	"vite.config.ts":     true,
	"rollup.config.js":   true,
	"babel.config.js":    true,
	".babelrc":           true,
	".eslintrc.json":     true,
	".golangci.yml":      true,
	".golangci.yaml":     true,
	"settings.py":        true,
	"config.py":          true,
}

// infraNames are deployment and CI descriptors.
var infraNames = map[string]bool{
	"dockerfile":          true,
	"docker-compose.yml":  true,
	"docker-compose.yaml": true,
	"jenkinsfile":         true,
	"vagrantfile":         true,
	"procfile":            true,
	".gitlab-ci.yml":      true,
	"cloudbuild.yaml":     true,
	"serverless.yml":      true,
	"skaffold.yaml":       true,
}

// docNames are documentation files worth analyzing.
var docNames = map[string]bool{
	"readme.md":       true,
	"readme.rst":      true,
	"readme.txt":      true,
	"readme":          true,
	"changelog.md":    true,
	"contributing.md": true,
	"license":         true,
	"architecture.md": true,
}

// configPathHints mark directories whose contents lean configuration.
var configPathHints = []string{"config", "configs", "settings", "env"}

// infraPathHints mark directories whose contents lean infrastructure.
var infraPathHints = []string{"deploy", "deployment", "infra", "terraform", "k8s", "kubernetes", "helm", ".github", "ci"}

// Tag returns the markdown fence language tag for a file, or "text" when
// the language is not recognized.
func Tag(path string) string {
	name := strings.ToLower(filepath.Base(path))
	if t, ok := noExtSource[name]; ok {
		return t
	}
	if t, ok := sourceExts[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return "text"
}

// IsSource reports whether the file should be collected for analysis.
func IsSource(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	if _, ok := noExtSource[name]; ok {
		return true
	}
	if infraNames[name] || configNames[name] || docNames[name] {
		return true
	}
	_, ok := sourceExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Priority classifies a file for chunk ordering.
func Priority(path string) Class {
	name := strings.ToLower(filepath.Base(path))

	switch {
	case entryPointNames[name]:
		return ClassEntryPoint
	case configNames[name]:
		return ClassConfig
	case infraNames[name]:
		return ClassInfra
	case docNames[name]:
		return ClassDocs
	}

	dir := strings.ToLower(filepath.ToSlash(filepath.Dir(path)))
	parts := strings.Split(dir, "/")
	for _, p := range parts {
		for _, hint := range infraPathHints {
			if p == hint {
				return ClassInfra
			}
		}
		for _, hint := range configPathHints {
			if p == hint {
				return ClassConfig
			}
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".rst", ".txt":
		return ClassDocs
	case ".yaml", ".yml", ".toml", ".ini", ".cfg":
		return ClassConfig
	case ".tf", ".hcl":
		return ClassInfra
	}
	return ClassOther
}

// Describe returns a short human-readable description used in chunk headers.
func Describe(path string) string {
	cls := Priority(path)
	tag := Tag(path)
	switch cls {
	case ClassEntryPoint:
		return "Application entry point (" + tag + ")"
	case ClassConfig:
		return "Configuration / build manifest (" + tag + ")"
	case ClassInfra:
		return "Infrastructure / deployment (" + tag + ")"
	case ClassDocs:
		return "Documentation (" + tag + ")"
	default:
		return "Source file (" + tag + ")"
	}
}
