package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/futig/rafiq-frontend/internal/config"
	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/metrics"
	"github.com/futig/rafiq-frontend/internal/pkg/logger"
	"github.com/futig/rafiq-frontend/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	resultIngested  = "ingested"
	resultUnchanged = "unchanged"
	resultFailed    = "failed"
)

type Ingester interface {
	IngestDocument(ctx context.Context, name string, content []byte) (*entity.IngestResponse, error)
}

// Watcher feeds text files dropped into a directory to the ingestion endpoint.
type Watcher struct {
	ingester Ingester
	dir      string
	debounce time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	hashes map[string]string
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

func New(cfg config.WatchConfig, ingester Ingester, logger *zap.Logger) *Watcher {
	return &Watcher{
		ingester: ingester,
		dir:      cfg.Dir,
		debounce: cfg.Debounce,
		logger:   logger.Named("watcher").With(zap.String("dir", cfg.Dir)),
		hashes:   make(map[string]string),
		timers:   make(map[string]*time.Timer),
	}
}

// Run scans the directory once and then follows it until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ctx = ctxzap.ToContext(ctx, w.logger)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.Scan(ctx)
	w.logger.Info("watching directory")

	defer w.wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !validator.IsSupportedFile(event.Name) {
				continue
			}
			switch {
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				w.schedule(ctx, event.Name)
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				w.forget(event.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// Scan ingests every supported file directly under the directory.
func (w *Watcher) Scan(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		ctxzap.Extract(ctx).Error("scan directory", zap.Error(err))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !validator.IsSupportedFile(entry.Name()) {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		w.process(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

// schedule coalesces bursts of events on one path; editors often write a file several times.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok && t.Stop() {
		t.Reset(w.debounce)
		return
	}

	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.process(ctx, path)
	})
	w.timers[path] = t
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.hashes, path)
	if t, ok := w.timers[path]; ok && t.Stop() {
		delete(w.timers, path)
		w.wg.Done()
	}
}

// wait stops pending timers and waits for running ingestions.
func (w *Watcher) wait() {
	w.mu.Lock()
	for path, t := range w.timers {
		if t.Stop() {
			delete(w.timers, path)
			w.wg.Done()
		}
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *Watcher) process(ctx context.Context, path string) {
	log := ctxzap.Extract(ctx).With(zap.String("file", filepath.Base(path)))

	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("read file", zap.Error(err))
			metrics.WatchedFilesTotal.WithLabelValues(resultFailed).Inc()
		}
		return
	}

	hash := fileHash(content)
	w.mu.Lock()
	unchanged := w.hashes[path] == hash
	w.mu.Unlock()
	if unchanged {
		metrics.WatchedFilesTotal.WithLabelValues(resultUnchanged).Inc()
		return
	}

	ctx = logger.WithAction(ctx, "watch_ingest")
	resp, err := w.ingester.IngestDocument(ctx, filepath.Base(path), content)
	if err != nil {
		log.Error("ingest file", zap.Error(err))
		metrics.WatchedFilesTotal.WithLabelValues(resultFailed).Inc()
		return
	}

	w.mu.Lock()
	w.hashes[path] = hash
	w.mu.Unlock()

	fields := []zap.Field{zap.String("sha256", hash[:12])}
	if resp != nil && resp.Indexed != nil {
		fields = append(fields, zap.Int("indexed", *resp.Indexed))
	}
	log.Info("file ingested", fields...)
	metrics.WatchedFilesTotal.WithLabelValues(resultIngested).Inc()
}

func fileHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
