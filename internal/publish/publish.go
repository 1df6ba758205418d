package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"annodocs/internal/config"
	"annodocs/internal/fileutil"
	"annodocs/internal/logging"
	"annodocs/internal/parser"
	"annodocs/internal/render"
)

const (
	IndexFile     = "index.html"
	SegmentsFile  = "segments.json"
	ShareFile     = "share.html"
	EmbedsDir     = "embeds"
	EmbedsIndex   = render.EmbedsIndexFile
	lockFileName  = ".annodocs-publish.lock"
	defaultTitle  = "Annotated transcript"
	maxEmbedLanes = 4
)

// ErrLocked is returned when another publisher holds the output directory.
var ErrLocked = errors.New("publish: output directory is locked by another publisher")

// Options controls what is written and where.
type Options struct {
	OutputDir string
	Title     string
	Embeds    bool
	ShareList bool
}

// Publisher writes rendered segments to disk.
type Publisher struct {
	opts     Options
	renderer render.Renderer
	logger   *slog.Logger
	now      func() time.Time
}

// New returns a publisher writing through renderer.
func New(opts Options, renderer render.Renderer, logger *slog.Logger) *Publisher {
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = defaultTitle
	}
	return &Publisher{
		opts:     opts,
		renderer: renderer,
		logger:   logging.NewComponentLogger(logger, "publish"),
		now:      time.Now,
	}
}

// FromConfig builds the publisher described by the [paths] and [render]
// sections of cfg.
func FromConfig(cfg *config.Config, renderer render.Renderer, logger *slog.Logger) *Publisher {
	return New(Options{
		OutputDir: cfg.Paths.OutputDir,
		Embeds:    cfg.Render.Embeds,
		ShareList: cfg.Render.ShareList,
	}, renderer, logger)
}

// Manifest lists what one Publish call wrote, relative to the output
// directory.
type Manifest struct {
	Files         []string `json:"files"`
	Embeds        int      `json:"embeds"`
	RemovedEmbeds []string `json:"removed_embeds,omitempty"`
}

type segmentsDocument struct {
	Status      parser.Status      `json:"status"`
	GeneratedAt time.Time          `json:"generated_at"`
	Segments    []render.Item      `json:"segments"`
	Diagnostics parser.Diagnostics `json:"diagnostics"`
}

// Publish writes result and its rendered items to the output directory.
// rendered must come from render.RenderAll over the same result.
func (p *Publisher) Publish(ctx context.Context, result *parser.Result, rendered []render.Item) (Manifest, error) {
	if result == nil {
		return Manifest{}, errors.New("publish: nil parse result")
	}
	if strings.TrimSpace(p.opts.OutputDir) == "" {
		return Manifest{}, errors.New("publish: output directory not configured")
	}
	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("publish: create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(p.opts.OutputDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return Manifest{}, fmt.Errorf("publish: acquire lock: %w", err)
	}
	if !ok {
		return Manifest{}, ErrLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release publish lock", logging.Error(err))
		}
	}()

	var manifest Manifest
	write := func(rel string, data []byte) error {
		if err := fileutil.WriteFileAtomic(filepath.Join(p.opts.OutputDir, rel), data, 0o644); err != nil {
			return fmt.Errorf("publish: write %s: %w", rel, err)
		}
		manifest.Files = append(manifest.Files, rel)
		return nil
	}

	page, err := p.renderer.Render(render.TemplatePage, render.Context{
		"title":    p.opts.Title,
		"status":   result.Status.String(),
		"segments": segmentMarkup(rendered),
	})
	if err != nil {
		return Manifest{}, fmt.Errorf("publish: render page: %w", err)
	}
	if err := write(IndexFile, []byte(page)); err != nil {
		return Manifest{}, err
	}

	payload, err := json.MarshalIndent(segmentsDocument{
		Status:      result.Status,
		GeneratedAt: p.now().UTC(),
		Segments:    rendered,
		Diagnostics: result.Diagnostics,
	}, "", "  ")
	if err != nil {
		return Manifest{}, fmt.Errorf("publish: encode segments: %w", err)
	}
	if err := write(SegmentsFile, payload); err != nil {
		return Manifest{}, err
	}

	published := p.publishedAnnotations(rendered)

	if p.opts.Embeds {
		files, removed, err := p.writeEmbeds(ctx, published)
		if err != nil {
			return Manifest{}, err
		}
		manifest.Files = append(manifest.Files, files...)
		manifest.Embeds = len(files) - 1
		manifest.RemovedEmbeds = removed
	}

	if p.opts.ShareList {
		share, err := p.renderer.Render(render.TemplateShare, render.Context{
			"title":       p.opts.Title,
			"annotations": contextsOf(published),
		})
		if err != nil {
			return Manifest{}, fmt.Errorf("publish: render share list: %w", err)
		}
		if err := write(ShareFile, []byte(share)); err != nil {
			return Manifest{}, err
		}
	}

	sort.Strings(manifest.Files)
	p.logger.Info("output published",
		logging.String("output_dir", p.opts.OutputDir),
		logging.String("status", result.Status.String()),
		logging.Int("files", len(manifest.Files)),
		logging.Int("embeds", manifest.Embeds),
	)
	return manifest, nil
}

// publishedAnnotations returns the published annotation items, keeping the
// first item for each embed file name.
func (p *Publisher) publishedAnnotations(items []render.Item) []render.Item {
	seen := make(map[string]struct{})
	var out []render.Item
	for _, it := range items {
		if it.Type != parser.TypeAnnotation {
			continue
		}
		if published, _ := it.Context["published"].(bool); !published {
			continue
		}
		name := render.EmbedFileName(it.Slug())
		if render.EmbedNameReserved(it.Slug()) {
			logging.WarnWithContext(p.logger, "embed slug clashes with the embeds index", "embed_reserved_slug",
				logging.Slug(it.Slug()),
				logging.String("embed_file", name),
			)
		}
		if _, dup := seen[name]; dup {
			logging.WarnWithContext(p.logger, "skipping embed with duplicate slug", "embed_duplicate",
				logging.Slug(it.Slug()),
				logging.Int("position", it.Position),
			)
			continue
		}
		seen[name] = struct{}{}
		out = append(out, it)
	}
	return out
}

// writeEmbeds renders the embed pages concurrently, then the embeds index,
// and removes pages left over from annotations that are no longer
// published.
func (p *Publisher) writeEmbeds(ctx context.Context, published []render.Item) ([]string, []string, error) {
	dir := filepath.Join(p.opts.OutputDir, EmbedsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("publish: create embeds directory: %w", err)
	}

	files := make([]string, len(published))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxEmbedLanes)
	for i, it := range published {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			name := render.EmbedFileName(it.Slug())
			markup, err := p.renderer.Render(render.TemplateEmbed, render.Context{
				"title":  p.opts.Title,
				"slug":   it.Slug(),
				"markup": template.HTML(it.Markup),
			})
			if err != nil {
				return fmt.Errorf("publish: render embed %s: %w", it.Slug(), err)
			}
			if err := fileutil.WriteFileAtomic(filepath.Join(dir, name), []byte(markup), 0o644); err != nil {
				return fmt.Errorf("publish: write embed %s: %w", name, err)
			}
			files[i] = filepath.Join(EmbedsDir, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	index, err := p.renderer.Render(render.TemplateEmbedsIndex, render.Context{
		"title":       p.opts.Title,
		"annotations": contextsOf(published),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("publish: render embeds index: %w", err)
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(dir, EmbedsIndex), []byte(index), 0o644); err != nil {
		return nil, nil, fmt.Errorf("publish: write embeds index: %w", err)
	}
	files = append(files, filepath.Join(EmbedsDir, EmbedsIndex))

	removed, err := p.removeStaleEmbeds(dir, files)
	if err != nil {
		return nil, nil, err
	}
	return files, removed, nil
}

func (p *Publisher) removeStaleEmbeds(dir string, keep []string) ([]string, error) {
	keepNames := make(map[string]struct{}, len(keep))
	for _, rel := range keep {
		keepNames[filepath.Base(rel)] = struct{}{}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("publish: list embeds: %w", err)
	}
	var removed []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".html" {
			continue
		}
		if _, ok := keepNames[name]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return nil, fmt.Errorf("publish: remove stale embed %s: %w", name, err)
		}
		removed = append(removed, filepath.Join(EmbedsDir, name))
		p.logger.Debug("removed stale embed", logging.String("file", name))
	}
	return removed, nil
}

func segmentMarkup(items []render.Item) []template.HTML {
	out := make([]template.HTML, 0, len(items))
	for _, it := range items {
		out = append(out, template.HTML(it.Markup))
	}
	return out
}

func contextsOf(items []render.Item) []render.Context {
	out := make([]render.Context, 0, len(items))
	for _, it := range items {
		out = append(out, it.Context)
	}
	return out
}
