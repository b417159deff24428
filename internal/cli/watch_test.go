package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/localitree/pkg/loader"
	"github.com/matzehuels/localitree/pkg/pipeline"
)

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locality.json")
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(path, []byte(testDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 50*time.Millisecond, func() { changed <- struct{}{} })
	}()
	time.Sleep(100 * time.Millisecond)

	// Writes to other files are ignored.
	if err := os.WriteFile(other, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
		t.Fatal("onChange called for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}

	// A burst of writes triggers one re-render.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(testDoc), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("onChange not called after write")
	}
	select {
	case <-changed:
		t.Error("burst of writes should be debounced into one call")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("watchFile() = %v, want context.Canceled", err)
	}
}

func TestWatchFileMissingDir(t *testing.T) {
	err := watchFile(context.Background(), filepath.Join(t.TempDir(), "missing", "x.json"), time.Millisecond, func() {})
	if err == nil {
		t.Error("watchFile() should fail when the directory does not exist")
	}
}

// captureStdout redirects os.Stdout until the returned func is called.
func captureStdout(t *testing.T) func() string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w

	var buf bytes.Buffer
	copied := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(copied)
	}()

	var once sync.Once
	read := func() string {
		once.Do(func() {
			os.Stdout = orig
			_ = w.Close()
			<-copied
			_ = r.Close()
		})
		return buf.String()
	}
	t.Cleanup(func() { read() })
	return read
}

func TestWatchRenderFailureKeepsOutput(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "locality.json")
	if err := os.WriteFile(src, []byte(`[{"name":"r","children":[null]}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "tree.svg")

	stdout := captureStdout(t)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	c := New(io.Discard, LogInfo)
	runner := pipeline.NewRunner(loader.New(loader.Options{Logger: c.Logger}), c.Logger)
	err := c.watchRender(ctx, runner, pipeline.Options{Source: src}, out)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("watchRender() = %v, want context.DeadlineExceeded", err)
	}

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output should not be written for an invalid tree, stat err = %v", err)
	}
	got := stdout()
	if !strings.Contains(got, "child 0 is null") {
		t.Errorf("stdout missing the render error:\n%s", got)
	}
	if !strings.Contains(got, "Output left unchanged") {
		t.Errorf("stdout missing the watch warning:\n%s", got)
	}
}
