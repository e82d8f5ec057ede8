package lang

import "testing"

func TestTag(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"cmd/server/main.go", "go"},
		{"src/app.py", "python"},
		{"web/index.tsx", "tsx"},
		{"Dockerfile", "dockerfile"},
		{"Makefile", "makefile"},
		{"notes.unknown", "text"},
		{"schema.sql", "sql"},
	}
	for _, tt := range tests {
		if got := Tag(tt.path); got != tt.want {
			t.Errorf("Tag(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIsSource(t *testing.T) {
	if !IsSource("internal/server.go") {
		t.Error("server.go should be source")
	}
	if !IsSource("Dockerfile") {
		t.Error("Dockerfile should be source")
	}
	if IsSource("logo.png") {
		t.Error("logo.png should not be source")
	}
	if IsSource("app.bin") {
		t.Error("app.bin should not be source")
	}
}

func TestPriority(t *testing.T) {
	tests := []struct {
		path string
		want Class
	}{
		{"main.go", ClassEntryPoint},
		{"src/index.js", ClassEntryPoint},
		{"package.json", ClassConfig},
		{"go.mod", ClassConfig},
		{"config/database.rb", ClassConfig},
		{"Dockerfile", ClassInfra},
		{"deploy/ingress.yaml", ClassInfra},
		{"README.md", ClassDocs},
		{"docs/guide.md", ClassDocs},
		{"internal/worker.go", ClassOther},
	}
	for _, tt := range tests {
		if got := Priority(tt.path); got != tt.want {
			t.Errorf("Priority(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestClassRankOrder(t *testing.T) {
	// Entry points must sort before configs, configs before everything else.
	if ClassEntryPoint.Rank() >= ClassConfig.Rank() {
		t.Error("entry points must rank before configs")
	}
	if ClassConfig.Rank() >= ClassOther.Rank() {
		t.Error("configs must rank before generic files")
	}
}
