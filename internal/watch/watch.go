package watch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"annodocs/internal/config"
	"annodocs/internal/directory"
	"annodocs/internal/fileutil"
	"annodocs/internal/logging"
	"annodocs/internal/parser"
	"annodocs/internal/publish"
	"annodocs/internal/render"
	"annodocs/internal/store"
)

// ErrAlreadyRunning is returned by Run when another watcher holds the lock.
var ErrAlreadyRunning = errors.New("watch: another watcher is using this state directory")

// Outcome describes one poll cycle.
type Outcome struct {
	// Changed is false when the document hash matched the latest run and
	// nothing was published.
	Changed  bool             `json:"changed"`
	Run      *store.Run       `json:"run,omitempty"`
	Result   *parser.Result   `json:"result,omitempty"`
	Manifest publish.Manifest `json:"manifest"`
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithInterval overrides the configured poll interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// Watcher runs the parse pipeline for one configured document.
type Watcher struct {
	cfg      *config.Config
	store    *store.Store
	base     *slog.Logger
	logger   *slog.Logger
	interval time.Duration

	lockPath string
	lock     *flock.Flock
	running  atomic.Bool

	// cycleMu serializes cycles so two re-parses of the document never
	// run at once.
	cycleMu sync.Mutex
}

// New constructs a watcher over cfg's document, journaling into st.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, opts ...Option) (*Watcher, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("watch requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.WatchLockPath()
	w := &Watcher{
		cfg:      cfg,
		store:    st,
		base:     logger,
		logger:   logging.NewComponentLogger(logger, "watch"),
		interval: cfg.PollInterval(),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.interval <= 0 {
		return nil, fmt.Errorf("watch: poll interval must be positive, got %s", w.interval)
	}
	return w, nil
}

// LockPath returns the single-instance lock file.
func (w *Watcher) LockPath() string { return w.lockPath }

// Run polls until ctx is canceled. The first cycle runs immediately. Cycle
// failures are logged and retried on the next tick.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return errors.New("watch: already running")
	}
	defer w.running.Store(false)

	if err := w.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("watch: ensure directories: %w", err)
	}
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("watch: acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn("failed to release watch lock", logging.Error(err))
		}
	}()

	w.logger.Info("watch started",
		logging.String(logging.FieldDocument, w.cfg.Paths.Document),
		logging.Duration("interval", w.interval),
		logging.String("lock", w.lockPath),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if _, err := w.Poll(ctx); err != nil && ctx.Err() == nil {
			logging.ErrorWithContext(w.logger, "poll cycle failed", "watch_cycle_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix the reported problem; the next poll retries"),
			)
		}
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Poll runs one cycle and skips the pipeline when the document is unchanged
// since the latest recorded run.
func (w *Watcher) Poll(ctx context.Context) (Outcome, error) {
	return w.cycle(ctx, false)
}

// Refresh runs one cycle regardless of the recorded hash.
func (w *Watcher) Refresh(ctx context.Context) (Outcome, error) {
	return w.cycle(ctx, true)
}

func (w *Watcher) cycle(ctx context.Context, force bool) (Outcome, error) {
	w.cycleMu.Lock()
	defer w.cycleMu.Unlock()

	document, err := w.cfg.RequireDocument()
	if err != nil {
		return Outcome{}, err
	}
	started := time.Now()
	data, err := os.ReadFile(document)
	if err != nil {
		return Outcome{}, fmt.Errorf("read document: %w", err)
	}
	hash := fileutil.HashBytes(data)

	if !force {
		latest, err := w.store.LatestRun(ctx, document)
		if err != nil {
			return Outcome{}, err
		}
		if latest != nil && latest.ContentHash == hash {
			w.logger.Debug("document unchanged",
				logging.String(logging.FieldDocument, document),
				logging.String("run", latest.ID),
			)
			return Outcome{Run: latest}, nil
		}
	}

	runID := uuid.NewString()
	ctx = logging.WithDocument(logging.WithRunID(ctx, runID), document)
	logger := logging.WithContext(ctx, w.logger)
	pipelineLogger := logging.WithContext(ctx, w.base)

	dirs, err := directory.Load(w.cfg.Directories.Speakers, w.cfg.Directories.Authors, w.cfg.Directories.DefaultSpeakerClass)
	if err != nil {
		return Outcome{}, err
	}
	renderer, err := render.NewTemplateRenderer(w.cfg.Render.TemplatesDir, pipelineLogger)
	if err != nil {
		return Outcome{}, err
	}

	result, err := parser.New(dirs, pipelineLogger).ParseReader(bytes.NewReader(data))
	if err != nil {
		return Outcome{}, err
	}
	items, err := render.RenderAll(renderer, render.Build(result))
	if err != nil {
		return Outcome{}, err
	}
	manifest, err := publish.FromConfig(w.cfg, renderer, pipelineLogger).Publish(ctx, result, items)
	if err != nil {
		return Outcome{}, err
	}

	run, records := store.FromResult(document, hash, result, started, time.Now())
	run.ID = runID
	saved, err := w.store.RecordRun(ctx, run, records)
	if err != nil {
		return Outcome{}, err
	}

	logger.Info("document published",
		logging.String("status", result.Status.String()),
		logging.Int("segments", len(result.Segments)),
		logging.Int("files", len(manifest.Files)),
		logging.Duration("elapsed", saved.Duration()),
	)
	return Outcome{Changed: true, Run: &saved, Result: result, Manifest: manifest}, nil
}
