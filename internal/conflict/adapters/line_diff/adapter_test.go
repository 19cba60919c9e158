package linediff

import (
	"strings"
	"testing"
)

func TestAdapter_ComputeDiff(t *testing.T) {
	tests := []struct {
		name     string
		baseName string
		headName string
		base     []byte
		head     []byte
		want     string // Empty if no diff expected
	}{
		{
			name:     "identical sides return empty diff",
			baseName: "config.yaml (ours)",
			headName: "config.yaml (theirs)",
			base:     []byte("port: 8080\nhost: local\n"),
			head:     []byte("port: 8080\nhost: local\n"),
			want:     "",
		},
		{
			name:     "diverging sides return unified diff",
			baseName: "config.yaml (ours)",
			headName: "config.yaml (theirs)",
			base:     []byte("port: 8080\nhost: local\ndebug: false\n"),
			head:     []byte("port: 8080\nhost: remote\ndebug: false\n"),
			want:     "--- config.yaml (ours)\n+++ config.yaml (theirs)\n@@ -1,4 +1,4 @@\n port: 8080\n-host: local\n+host: remote\n debug: false",
		},
		{
			name:     "empty ours shows all additions",
			baseName: "new.go (ours)",
			headName: "new.go (theirs)",
			base:     []byte(""),
			head:     []byte("package main\n"),
			want:     "--- new.go (ours)\n+++ new.go (theirs)\n@@ -1 +1,2 @@\n+package main",
		},
		{
			name:     "empty theirs shows all deletions",
			baseName: "old.go (ours)",
			headName: "old.go (theirs)",
			base:     []byte("package main\n"),
			head:     []byte(""),
			want:     "--- old.go (ours)\n+++ old.go (theirs)\n@@ -1,2 +1 @@\n-package main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := New()
			got := adapter.ComputeDiff(tt.baseName, tt.headName, tt.base, tt.head)

			if tt.want == "" && got != "" {
				t.Errorf("ComputeDiff() expected empty diff, got:\n%s", got)
				return
			}
			if got != tt.want {
				t.Errorf("ComputeDiff() diff mismatch:\n--- Got ---\n%s\n--- Want ---\n%s", got, tt.want)
			}
		})
	}
}

func TestAdapter_ComputeDiff_ContextLines(t *testing.T) {
	adapter := New()

	base := []byte("l1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9\n")
	head := []byte("l1\nl2\nl3\nl4\nCHANGED\nl6\nl7\nl8\nl9\n")

	diff := adapter.ComputeDiff("f (ours)", "f (theirs)", base, head)

	if !strings.Contains(diff, "l2") {
		t.Error("expected context line 'l2' before change")
	}
	if !strings.Contains(diff, "l8") {
		t.Error("expected context line 'l8' after change")
	}
	if !strings.Contains(diff, "-l5") {
		t.Error("expected removed line '-l5'")
	}
	if !strings.Contains(diff, "+CHANGED") {
		t.Error("expected added line '+CHANGED'")
	}
}
