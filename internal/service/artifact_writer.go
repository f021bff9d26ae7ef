package service

import (
	"context"
	"log"
	"sync"
	"time"

	"entrygate/internal/port"
)

// ArtifactWriterConfig holds settings for the artifact writer.
type ArtifactWriterConfig struct {
	Concurrency int
	QueueSize   int
	Timeout     time.Duration
}

// ArtifactWriter saves debug artifacts in the background so a slow store
// never delays a draft. At most Concurrency saves run at once and at most
// QueueSize more wait for a slot; saves beyond that are dropped and logged.
type ArtifactWriter struct {
	store   port.ArtifactStore
	cfg     ArtifactWriterConfig
	sem     chan struct{}
	pending chan struct{}
	wg      sync.WaitGroup
}

// NewArtifactWriter creates an ArtifactWriter on top of store.
func NewArtifactWriter(store port.ArtifactStore, cfg ArtifactWriterConfig) *ArtifactWriter {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &ArtifactWriter{
		store:   store,
		cfg:     cfg,
		sem:     make(chan struct{}, cfg.Concurrency),
		pending: make(chan struct{}, cfg.Concurrency+cfg.QueueSize),
	}
}

// Enqueue schedules a save of artifacts under draftID. It reports false when
// the backlog is full and the save was dropped. Failures are logged.
func (w *ArtifactWriter) Enqueue(draftID string, artifacts []port.Artifact) bool {
	if w == nil || w.store == nil || len(artifacts) == 0 {
		return false
	}
	select {
	case w.pending <- struct{}{}:
	default:
		log.Printf("artifactWriter: backlog full, dropping %d artifacts for draft %s", len(artifacts), draftID)
		return false
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.pending }()
		w.sem <- struct{}{}
		defer func() { <-w.sem }()

		// Detached from the request so saves finish after the response is sent.
		ctx, cancel := context.WithTimeout(context.Background(), w.cfg.Timeout)
		defer cancel()

		loc, err := w.store.Save(ctx, draftID, artifacts)
		if err != nil {
			log.Printf("artifactWriter: failed to save %d artifacts for draft %s: %v", len(artifacts), draftID, err)
			return
		}
		log.Printf("artifactWriter: saved %d artifacts for draft %s to %s", len(artifacts), draftID, loc)
	}()
	return true
}

// Wait blocks until every enqueued save has finished or ctx is done.
func (w *ArtifactWriter) Wait(ctx context.Context) error {
	if w == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
