package canvas

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"easel/internal/board/models"
	"easel/pkg/platform/sentinel"
)

// InMemory keeps each board's object log and options map in process memory.
// It backs tests and single-node development; production uses PostgresStore.
//
// Object ids are assigned per board, monotonically from 1. Clearing a board
// resets the counter, so the next append after a clear is assigned id 1
// again — the same behavior a fresh store instance would show.
type InMemory struct {
	mu     sync.RWMutex
	boards map[string]*boardCanvas
}

type boardCanvas struct {
	nextID  int64
	objects []models.CanvasObject
	options map[string]string
}

func NewInMemory() *InMemory {
	return &InMemory{boards: make(map[string]*boardCanvas)}
}

func (s *InMemory) canvas(boardUID string) *boardCanvas {
	if c := s.boards[boardUID]; c != nil {
		return c
	}
	c := &boardCanvas{options: make(map[string]string)}
	s.boards[boardUID] = c
	return c
}

// AppendObject validates the object body, allocates the next id and appends
// the record to the board's log.
func (s *InMemory) AppendObject(_ context.Context, boardUID string, object json.RawMessage) (int64, error) {
	if !models.ValidObjectPayload(object) {
		return 0, sentinel.ErrInvalidPayload
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.canvas(boardUID)
	c.nextID++
	c.objects = append(c.objects, models.CanvasObject{
		ObjectID: c.nextID,
		Object:   slices.Clone(object),
	})
	return c.nextID, nil
}

// UpdateObject replaces the stored body in place; id and log position are
// unchanged.
func (s *InMemory) UpdateObject(_ context.Context, boardUID string, objectID int64, object json.RawMessage) error {
	if !models.ValidObjectPayload(object) {
		return sentinel.ErrInvalidPayload
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.boards[boardUID]
	if c == nil {
		return sentinel.ErrNotFound
	}
	for i := range c.objects {
		if c.objects[i].ObjectID == objectID {
			c.objects[i].Object = slices.Clone(object)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// ClearObjects empties the board's log and resets the id counter. Options
// survive a clear.
func (s *InMemory) ClearObjects(_ context.Context, boardUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.boards[boardUID]; c != nil {
		c.objects = nil
		c.nextID = 0
	}
	return nil
}

// ListObjects returns the log in insertion order.
func (s *InMemory) ListObjects(_ context.Context, boardUID string) ([]models.CanvasObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.CanvasObject{}
	if c := s.boards[boardUID]; c != nil {
		for _, obj := range c.objects {
			out = append(out, models.CanvasObject{
				ObjectID: obj.ObjectID,
				Object:   slices.Clone(obj.Object),
			})
		}
	}
	return out, nil
}

// MergeOptions validates the whole delta, then applies it last-write-wins.
// Nothing is applied when any entry fails validation.
func (s *InMemory) MergeOptions(_ context.Context, boardUID string, delta map[string]string) error {
	if !models.ValidOptions(delta) {
		return sentinel.ErrInvalidOptions
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.canvas(boardUID)
	for name, val := range delta {
		c.options[name] = val
	}
	return nil
}

// Options returns the current option map, possibly empty.
func (s *InMemory) Options(_ context.Context, boardUID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]string{}
	if c := s.boards[boardUID]; c != nil {
		for name, val := range c.options {
			out[name] = val
		}
	}
	return out, nil
}

// DropBoard discards all canvas state for a destroyed board.
func (s *InMemory) DropBoard(_ context.Context, boardUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.boards, boardUID)
	return nil
}
