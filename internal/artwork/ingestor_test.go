package artwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"
)

type fetcherStub struct {
	data        []byte
	contentType string
	err         error
}

func (f fetcherStub) Fetch(context.Context, string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, f.contentType, nil
}

type storageStub struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func (s *storageStub) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	_ = ctx
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	s.saved[name] = data
	s.mu.Unlock()
	return fmt.Sprintf("https://cdn.example.com/%s", name), nil
}

type updaterStub struct {
	mu          sync.Mutex
	readyCalls  []string
	readyLoc    string
	readySize   int64
	failedCalls []string
	readyErr    error
}

func (u *updaterStub) MarkArtworkReady(ctx context.Context, songID, location string, size int64) error {
	_ = ctx
	u.mu.Lock()
	defer u.mu.Unlock()
	u.readyCalls = append(u.readyCalls, songID)
	u.readyLoc = location
	u.readySize = size
	return u.readyErr
}

func (u *updaterStub) MarkArtworkFailed(ctx context.Context, songID string) error {
	_ = ctx
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failedCalls = append(u.failedCalls, songID)
	return nil
}

func (u *updaterStub) counts() (ready, failed int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.readyCalls), len(u.failedCalls)
}

func shutdownIngestor(t *testing.T, ing *Ingestor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ing.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestIngestorSuccess(t *testing.T) {
	fetcher := fetcherStub{data: []byte("image-bytes"), contentType: "image/jpeg"}
	storage := &storageStub{}
	updater := &updaterStub{}

	ing := NewIngestor(fetcher, storage, updater, IngestorConfig{QueueSize: 4, Workers: 1}, nil)

	job := Job{SongID: "song-1", ThumbnailURL: "https://img.youtube.com/vi/abc/mqdefault.jpg"}
	if err := ing.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	shutdownIngestor(t, ing)

	ready, failed := updater.counts()
	if ready != 1 || failed != 0 {
		t.Fatalf("expected 1 ready 0 failed, got %d/%d", ready, failed)
	}
	if updater.readyLoc != "https://cdn.example.com/song-1/thumb.jpg" {
		t.Fatalf("unexpected location: %q", updater.readyLoc)
	}
	if updater.readySize != int64(len("image-bytes")) {
		t.Fatalf("unexpected size: %d", updater.readySize)
	}

	storage.mu.Lock()
	_, ok := storage.saved["song-1/thumb.jpg"]
	storage.mu.Unlock()
	if !ok {
		t.Fatal("expected storage to contain mirrored artwork")
	}
}

func TestIngestorFetchFailure(t *testing.T) {
	fetcher := fetcherStub{err: errors.New("status 404")}
	updater := &updaterStub{}

	ing := NewIngestor(fetcher, &storageStub{}, updater, IngestorConfig{}, nil)

	if err := ing.Enqueue(context.Background(), Job{SongID: "song-1", ThumbnailURL: "https://example.com/x.jpg"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	shutdownIngestor(t, ing)

	ready, failed := updater.counts()
	if ready != 0 || failed != 1 {
		t.Fatalf("expected 0 ready 1 failed, got %d/%d", ready, failed)
	}
}

func TestIngestorStorageFailure(t *testing.T) {
	fetcher := fetcherStub{data: []byte("x"), contentType: "image/png"}
	updater := &updaterStub{}

	ing := NewIngestor(fetcher, &storageStub{err: errors.New("bucket gone")}, updater, IngestorConfig{}, nil)

	if err := ing.Enqueue(context.Background(), Job{SongID: "song-2", ThumbnailURL: "https://example.com/x.png"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	shutdownIngestor(t, ing)

	_, failed := updater.counts()
	if failed != 1 {
		t.Fatalf("expected failure recorded, got %d", failed)
	}
}

func TestIngestorSkipsEmptyThumbnail(t *testing.T) {
	fetcher := fetcherStub{data: []byte("x")}
	updater := &updaterStub{}

	ing := NewIngestor(fetcher, &storageStub{}, updater, IngestorConfig{}, nil)

	if err := ing.Enqueue(context.Background(), Job{SongID: "song-3", ThumbnailURL: "  "}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	shutdownIngestor(t, ing)

	ready, failed := updater.counts()
	if ready != 0 || failed != 0 {
		t.Fatalf("expected no updates for empty thumbnail, got %d/%d", ready, failed)
	}
}

func TestIngestorEnqueueAfterShutdown(t *testing.T) {
	ing := NewIngestor(fetcherStub{}, &storageStub{}, &updaterStub{}, IngestorConfig{}, nil)
	shutdownIngestor(t, ing)

	if err := ing.Enqueue(context.Background(), Job{SongID: "song-4", ThumbnailURL: "https://example.com/x.jpg"}); err == nil {
		t.Fatal("expected error enqueueing after shutdown")
	}
}
