package watch_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"annodocs/internal/parser"
	"annodocs/internal/testsupport"
	"annodocs/internal/watch"
)

const speakersYAML = `
speakers:
  - name: LESTER HOLT
    class: speaker moderator
`

func TestPollPublishesOnlyWhenDocumentChanges(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDirectoryFiles("speakers.yaml", speakersYAML, "", ""))
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.WriteDocument(t, cfg, testsupport.P("LESTER HOLT: Good evening."))

	w, err := watch.New(cfg, st, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	first, err := w.Poll(ctx)
	if err != nil {
		t.Fatalf("first Poll failed: %v", err)
	}
	if !first.Changed || first.Run == nil {
		t.Fatalf("expected first poll to publish, got %+v", first)
	}
	if first.Run.Status != parser.StatusDuring {
		t.Fatalf("status = %s, want during", first.Run.Status)
	}
	index := testsupport.ReadFile(t, filepath.Join(cfg.Paths.OutputDir, "index.html"))
	if !strings.Contains(index, `<h4 class="speaker moderator">LESTER HOLT</h4>`) {
		t.Fatalf("index missing speaker from directory file:\n%s", index)
	}

	second, err := w.Poll(ctx)
	if err != nil {
		t.Fatalf("second Poll failed: %v", err)
	}
	if second.Changed {
		t.Fatal("unchanged document must not be republished")
	}
	if second.Run == nil || second.Run.ID != first.Run.ID {
		t.Fatalf("expected latest run %s, got %+v", first.Run.ID, second.Run)
	}

	testsupport.WriteDocument(t, cfg, testsupport.P("LESTER HOLT: Good evening."), testsupport.Rule, testsupport.P("END"))
	third, err := w.Poll(ctx)
	if err != nil {
		t.Fatalf("third Poll failed: %v", err)
	}
	if !third.Changed || third.Run.Status != parser.StatusAfter {
		t.Fatalf("expected republish with status after, got %+v", third.Run)
	}

	runs, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 recorded runs, got %d", len(runs))
	}
}

func TestRefreshIgnoresRecordedHash(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutExtras())
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.WriteDocument(t, cfg, testsupport.P("text"))

	w, err := watch.New(cfg, st, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := w.Poll(context.Background()); err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	out, err := w.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if !out.Changed {
		t.Fatal("Refresh must always run the pipeline")
	}
}

func TestPollMissingDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	w, err := watch.New(cfg, testsupport.MustOpenStore(t, cfg), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := w.Poll(context.Background()); err == nil {
		t.Fatal("expected error for missing document")
	}
}

func TestPollRejectsBrokenDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDirectoryFiles("speakers.yaml", "speakers: [", "", ""))
	testsupport.WriteDocument(t, cfg, testsupport.P("text"))
	w, err := watch.New(cfg, testsupport.MustOpenStore(t, cfg), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := w.Poll(context.Background()); err == nil {
		t.Fatal("expected directory load error")
	}
}

func TestRunRefusesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	holder := flock.New(cfg.WatchLockPath())
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	t.Cleanup(func() { _ = holder.Unlock() })

	w, err := watch.New(cfg, st, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Run(context.Background()); !errors.Is(err, watch.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestRunPollsUntilCanceled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutExtras())
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.WriteDocument(t, cfg, testsupport.P("text"))

	w, err := watch.New(cfg, st, nil, watch.WithInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		run, err := st.LatestRun(context.Background(), cfg.Paths.Document)
		if err != nil {
			t.Fatalf("LatestRun failed: %v", err)
		}
		if run != nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("watcher never recorded a run")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
