// Package services holds the background jobs that run next to the web server.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/TahsinShan/SAT-ar-Matha/app/database"
	"github.com/TahsinShan/SAT-ar-Matha/app/files"
)

// Sweeper removes uploads that no course or resource references any more.
// These are left behind when a file removal failed after its row was deleted.
type Sweeper struct {
	Store database.FileStore
	Files *files.Manager
	Log   zerolog.Logger
	// Grace protects files that were just saved and whose row is not yet committed.
	Grace time.Duration
	Now   func() time.Time
}

func NewSweeper(store database.FileStore, fm *files.Manager, grace time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{Store: store, Files: fm, Log: log, Grace: grace, Now: time.Now}
}

// SweepOnce deletes unreferenced uploads older than the grace period and
// reports how many were removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	referenced, err := s.Store.ListStoredFiles(ctx)
	if err != nil {
		return 0, err
	}
	keep := make(map[string]bool, len(referenced))
	for _, name := range referenced {
		keep[name] = true
	}

	stored, err := s.Files.List()
	if err != nil {
		return 0, err
	}
	cutoff := s.Now().Add(-s.Grace)
	removed := 0
	for _, f := range stored {
		if keep[f.Name] || f.ModTime.After(cutoff) {
			continue
		}
		if err := s.Files.Remove(f.Name); err != nil {
			continue
		}
		removed++
		s.Log.Info().Str("file", f.Name).Msg("removed orphaned upload")
	}
	return removed, nil
}

// Start sweeps every interval until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	go func() {
		s.Log.Info().Dur("interval", interval).Msg("upload sweeper started")
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.SweepOnce(ctx); err != nil {
					s.Log.Error().Err(err).Msg("sweeping uploads")
				}
			}
		}
	}()
}
