package artwork

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"
)

// Storage persists fetched artwork and returns a public location.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// SongArtworkUpdater persists ingestion status updates for song entries.
type SongArtworkUpdater interface {
	MarkArtworkReady(ctx context.Context, songID, location string, size int64) error
	MarkArtworkFailed(ctx context.Context, songID string) error
}

// ImageFetcher downloads a thumbnail image.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// IngestorConfig controls the concurrency characteristics of the ingestor.
type IngestorConfig struct {
	QueueSize    int
	Workers      int
	FetchTimeout time.Duration
}

// Job identifies one song thumbnail to mirror into object storage.
type Job struct {
	SongID       string
	ThumbnailURL string
}

// Ingestor asynchronously mirrors derived thumbnails into object storage so
// the feed does not depend on third-party image hosts.
type Ingestor struct {
	fetcher ImageFetcher
	storage Storage
	updater SongArtworkUpdater
	timeout time.Duration
	logger  *slog.Logger

	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

var errIngestorClosed = errors.New("artwork ingestor closed")

// NewIngestor constructs a background worker pool that mirrors artwork.
func NewIngestor(fetcher ImageFetcher, storage Storage, updater SongArtworkUpdater, cfg IngestorConfig, logger *slog.Logger) *Ingestor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	ing := &Ingestor{
		fetcher: fetcher,
		storage: storage,
		updater: updater,
		timeout: cfg.FetchTimeout,
		logger:  logger,
		jobs:    make(chan Job, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	ing.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go ing.worker()
	}

	return ing
}

// Enqueue schedules artwork mirroring for the supplied song.
func (i *Ingestor) Enqueue(ctx context.Context, job Job) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return errIngestorClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return errIngestorClosed
	case i.jobs <- job:
		return nil
	}
}

// Shutdown waits for the worker pool to drain outstanding jobs.
func (i *Ingestor) Shutdown(ctx context.Context) error {
	i.once.Do(func() {
		i.cancel()
		close(i.jobs)
	})

	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (i *Ingestor) worker() {
	defer i.wg.Done()

	for {
		select {
		case <-i.ctx.Done():
			return
		case job, ok := <-i.jobs:
			if !ok {
				return
			}
			i.handleJob(job)
		}
	}
}

func (i *Ingestor) handleJob(job Job) {
	if i.fetcher == nil || i.storage == nil || i.updater == nil {
		i.logger.Error("artwork ingestor missing dependencies", "hasFetcher", i.fetcher != nil, "hasStorage", i.storage != nil, "hasUpdater", i.updater != nil)
		return
	}
	if strings.TrimSpace(job.ThumbnailURL) == "" {
		return
	}

	fetchCtx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()

	data, contentType, err := i.fetcher.Fetch(fetchCtx, job.ThumbnailURL)
	if err != nil {
		i.logger.Error("artwork fetch failed", "songId", job.SongID, "url", job.ThumbnailURL, "error", err)
		i.recordFailure(job.SongID)
		return
	}

	key := path.Join(job.SongID, artworkFileName(contentType))
	location, err := i.storage.Save(fetchCtx, key, bytes.NewReader(data))
	if err != nil {
		i.logger.Error("artwork save failed", "songId", job.SongID, "error", err)
		i.recordFailure(job.SongID)
		return
	}

	if err := i.recordSuccess(job.SongID, location, int64(len(data))); err != nil {
		i.logger.Error("mark artwork ready", "songId", job.SongID, "error", err)
		i.recordFailure(job.SongID)
	}
}

func (i *Ingestor) recordFailure(songID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := i.updater.MarkArtworkFailed(ctx, songID); err != nil {
		i.logger.Error("record artwork failure", "songId", songID, "error", err)
	}
}

func (i *Ingestor) recordSuccess(songID, location string, size int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return i.updater.MarkArtworkReady(ctx, songID, location, size)
}

func artworkFileName(contentType string) string {
	switch contentType {
	case "image/png":
		return "thumb.png"
	case "image/webp":
		return "thumb.webp"
	default:
		return "thumb.jpg"
	}
}
