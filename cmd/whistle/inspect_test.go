package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePage(t *testing.T, html string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspectPage(t *testing.T) {
	path := writePage(t, `<body><div data-whistle-program="counter" data-whistle-params='{"start":1}'><b>0</b></div></body>`)

	var out bytes.Buffer
	if err := inspectPage(&out, path, "/", ""); err != nil {
		t.Fatalf("inspectPage() error = %v", err)
	}

	want := []string{
		"counter (no socket)",
		`params: {"start":1}`,
		`dom:    ["div",`,
		`["b",{},[["text","","0"]]]`,
	}
	for _, w := range want {
		if !strings.Contains(out.String(), w) {
			t.Errorf("output missing %q:\n%s", w, out.String())
		}
	}
}

func TestInspectCommand(t *testing.T) {
	path := writePage(t, `<div data-whistle-program="clock"></div>`)

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"inspect", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "clock ") {
		t.Errorf("output = %q", out.String())
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != version {
		t.Errorf("version = %q, want %q", out.String(), version)
	}
}

func TestCommandLoop(t *testing.T) {
	ts := newTestSession(t)
	inline := func(f func()) error { f(); return nil }

	t.Run("quit", func(t *testing.T) {
		lines := make(chan string, 3)
		lines <- "dance"
		lines <- "quit"
		lines <- "tree"
		var out bytes.Buffer
		if err := commandLoop(context.Background(), lines, ts.session, inline, &out); err != nil {
			t.Fatalf("commandLoop() error = %v", err)
		}
		if !strings.Contains(out.String(), "W302") {
			t.Errorf("unknown command not reported: %q", out.String())
		}
		if strings.Contains(out.String(), "<button>") {
			t.Error("commands after quit were run")
		}
	})

	t.Run("closed input waits for context", func(t *testing.T) {
		lines := make(chan string)
		close(lines)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- commandLoop(ctx, lines, ts.session, inline, &bytes.Buffer{}) }()

		select {
		case <-done:
			t.Fatal("commandLoop returned on closed input")
		default:
		}
		cancel()
		if err := <-done; err != nil {
			t.Errorf("commandLoop() error = %v", err)
		}
	})
}
