package service

import (
	"context"
	"time"

	"easel/pkg/platform/audit"
	"easel/pkg/requestcontext"
)

// RunJanitor sweeps expired ownerless boards on a fixed interval until the
// context is cancelled. Boards with an owner are never collected.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "board janitor started",
		"interval", interval,
		"expiry", s.boardExpiry,
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "board janitor stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.SweepExpired(ctx); err != nil {
				s.logger.ErrorContext(ctx, "janitor sweep failed", "error", err)
			}
		}
	}
}

// SweepExpired collects every ownerless board idle past the expiry window.
// Each board is re-checked under its own lock so a write racing the sweep
// keeps the board alive.
func (s *Service) SweepExpired(ctx context.Context) error {
	cutoff := requestcontext.Now(ctx).Add(-s.boardExpiry)

	expired, err := s.directory.ListExpiredOwnerless(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, candidate := range expired {
		if err := s.expireBoard(ctx, candidate.UID, cutoff); err != nil {
			s.logger.ErrorContext(ctx, "board expiry failed", "board", candidate.UID, "error", err)
		}
	}
	return nil
}

func (s *Service) expireBoard(ctx context.Context, uid string, cutoff time.Time) error {
	unlock := s.locks.lock(uid)
	defer unlock()

	b, err := s.directory.Find(ctx, uid)
	if err != nil {
		return nil // already gone
	}
	if b.OwnerID != "" || b.UpdatedAt.After(cutoff) {
		return nil // claimed or touched since listing
	}

	if err := s.destroyLocked(ctx, uid); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "board expired", "board", uid, "idle_since", b.UpdatedAt)
	s.metrics.IncBoardsExpired()
	s.audit(ctx, audit.EventBoardExpired, uid, "", "idle past expiry")
	return nil
}
