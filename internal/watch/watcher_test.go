// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

func startWatcher(t *testing.T, cfg Config) (context.CancelFunc, <-chan error) {
	t.Helper()

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel, done
}

func TestWatcher_RebuildsOnSourceChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, d := range []string{"src/main/java", "target/classes"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	var (
		mu      sync.Mutex
		batches [][]string
	)
	got := make(chan struct{}, 8)
	startWatcher(t, Config{
		ModuleDir: dir,
		Debounce:  50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			batches = append(batches, changed)
			mu.Unlock()
			got <- struct{}{}
			return nil
		},
	})

	// Build output must not trigger a rebuild.
	if err := os.WriteFile(filepath.Join(dir, "target", "classes", "A.class"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "main", "java", "A.java"), []byte("class A {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pom.xml"), []byte("<project/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called")
	}
	// Allow a possible second batch to land before inspecting.
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	var all []string
	for _, b := range batches {
		all = append(all, b...)
	}
	if !slices.Contains(all, "src/main/java/A.java") {
		t.Errorf("changed = %v, want src/main/java/A.java", all)
	}
	if !slices.Contains(all, "pom.xml") {
		t.Errorf("changed = %v, want pom.xml", all)
	}
	for _, p := range all {
		if filepath.Dir(p) == "target/classes" {
			t.Errorf("build output %q should be ignored", p)
		}
	}
}

func TestWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := make(chan []string, 8)
	startWatcher(t, Config{
		ModuleDir: dir,
		Debounce:  50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			got <- changed
			return nil
		},
	})

	pkg := filepath.Join(dir, "src", "pkg")
	if err := os.Mkdir(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(pkg, "B.java"), []byte("class B {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-got:
			if slices.Contains(changed, "src/pkg/B.java") {
				return
			}
		case <-deadline:
			t.Fatal("change in a new directory was not reported")
		}
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{ModuleDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if err := w.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{ModuleDir: t.TempDir(), Patterns: []string{"src/[a-"}}); err == nil {
		t.Error("New() should reject an invalid pattern")
	}
}

func TestMatchAny(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rel  string
		want bool
	}{
		{"src/main/java/A.java", true},
		{"pom.xml", true},
		{"module/pom.xml", false},
		{"README.md", false},
	}
	for _, tt := range tests {
		if got := matchAny(DefaultPatterns, tt.rel); got != tt.want {
			t.Errorf("matchAny(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}

	for _, rel := range []string{"target/x.jar", "src/.git/HEAD", "src/A.java.swp", "src/A.java~"} {
		if !matchAny(defaultIgnores, rel) {
			t.Errorf("%q should be ignored", rel)
		}
	}
}
