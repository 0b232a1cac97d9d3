// Package ingest feeds invoice PDFs into the processing queue: single
// files or whole directories, with content-hash deduplication so the same
// statement dropped twice is only processed once.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/async"
)

// DirStats summarizes one directory ingest run.
type DirStats struct {
	Scanned      int
	Matched      int
	Enqueued     int
	Deduplicated int
	Failed       int
}

// Scanner finds ingestible PDFs and enqueues them for processing.
type Scanner struct {
	queue  async.Queue
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]string // content hash -> first path seen
}

func NewScanner(queue async.Queue, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		queue:  queue,
		logger: logger,
		seen:   make(map[string]string),
	}
}

// IngestFile hashes and enqueues one PDF. The returned bool is true when
// the file deduplicated against an earlier ingest.
func (s *Scanner) IngestFile(ctx context.Context, path, provider string) (uuid.UUID, bool, error) {
	if !constants.IsIngestible(path) {
		return uuid.Nil, false, fmt.Errorf("%s: not an ingestible file type", path)
	}
	hash, err := ContentHash(path)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("hash %s: %w", path, err)
	}

	s.mu.Lock()
	if first, dup := s.seen[hash]; dup {
		s.mu.Unlock()
		s.logger.Info("duplicate content, skipping", "path", path, "first_seen", first)
		return uuid.Nil, true, nil
	}
	s.seen[hash] = path
	s.mu.Unlock()

	job := async.Job{
		ID:          uuid.New(),
		Path:        path,
		Provider:    provider,
		SubmittedAt: time.Now(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return uuid.Nil, false, fmt.Errorf("enqueue %s: %w", path, err)
	}
	return job.ID, false, nil
}

// IngestDirectory walks root and enqueues every ingestible PDF found.
func (s *Scanner) IngestDirectory(ctx context.Context, root, provider string, skipHidden bool) (DirStats, error) {
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if skipHidden && path != root && IsHidden(path) {
				return filepath.SkipDir
			}
			return nil
		}
		stats.Scanned++
		if skipHidden && IsHidden(path) {
			return nil
		}
		if !constants.IsIngestible(path) {
			return nil
		}
		stats.Matched++
		_, dedup, err := s.IngestFile(ctx, path, provider)
		switch {
		case err != nil:
			stats.Failed++
			s.logger.Error("ingest failed", "path", path, "error", err)
		case dedup:
			stats.Deduplicated++
		default:
			stats.Enqueued++
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("walk %s: %w", root, err)
	}

	s.logger.Info("directory ingest completed",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"enqueued", stats.Enqueued,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed)
	return stats, nil
}

// ContentHash returns the sha256 hex digest of a file's contents.
func ContentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
