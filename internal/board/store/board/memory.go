package board

import (
	"context"
	"sort"
	"sync"
	"time"

	"easel/internal/board/models"
	"easel/pkg/platform/sentinel"
)

// InMemory is the process-local board directory. It hands out clones so
// callers mutate boards through the service layer, never through shared
// pointers.
type InMemory struct {
	mu     sync.RWMutex
	boards map[string]*models.Board
}

func NewInMemory() *InMemory {
	return &InMemory{boards: make(map[string]*models.Board)}
}

// Create inserts a new board, rejecting uid collisions.
func (s *InMemory) Create(_ context.Context, b *models.Board) error {
	if err := b.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boards[b.UID]; ok {
		return sentinel.ErrConflict
	}
	s.boards[b.UID] = b.Clone()
	return nil
}

func (s *InMemory) Find(_ context.Context, uid string) (*models.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.boards[uid]; ok {
		return b.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Exists(_ context.Context, uid string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.boards[uid]
	return ok, nil
}

// Update replaces the stored board after re-validating its invariants.
func (s *InMemory) Update(_ context.Context, b *models.Board) error {
	if err := b.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boards[b.UID]; !ok {
		return sentinel.ErrNotFound
	}
	s.boards[b.UID] = b.Clone()
	return nil
}

func (s *InMemory) Delete(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boards[uid]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.boards, uid)
	return nil
}

// Touch refreshes the board's activity timestamp. Snapshot reads count as
// activity so active anonymous boards survive the expiry sweep.
func (s *InMemory) Touch(_ context.Context, uid string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[uid]
	if !ok {
		return sentinel.ErrNotFound
	}
	b.UpdatedAt = now
	return nil
}

// ListAvailable returns boards the caller may join: all public boards plus
// boards the caller is a member of, oldest first. An empty userID lists
// public boards only.
func (s *InMemory) ListAvailable(_ context.Context, userID string) ([]*models.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Board{}
	for _, b := range s.boards {
		if b.Access == models.AccessPublic || (userID != "" && b.IsMember(userID)) {
			out = append(out, b.Clone())
		}
	}
	sortBoards(out)
	return out, nil
}

// ListExpiredOwnerless returns ownerless boards with no activity since the
// cutoff. The janitor destroys them.
func (s *InMemory) ListExpiredOwnerless(_ context.Context, cutoff time.Time) ([]*models.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Board{}
	for _, b := range s.boards {
		if b.OwnerID == "" && !b.UpdatedAt.After(cutoff) {
			out = append(out, b.Clone())
		}
	}
	sortBoards(out)
	return out, nil
}

func sortBoards(boards []*models.Board) {
	sort.Slice(boards, func(i, j int) bool {
		if boards[i].CreatedAt.Equal(boards[j].CreatedAt) {
			return boards[i].UID < boards[j].UID
		}
		return boards[i].CreatedAt.Before(boards[j].CreatedAt)
	})
}
