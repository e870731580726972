package models

import (
	"fmt"
	"slices"
	"time"

	dErrors "easel/pkg/domain-errors"
)

// AccessLevel controls whether a board shows up in public listings.
type AccessLevel string

const (
	AccessPublic  AccessLevel = "public"
	AccessPrivate AccessLevel = "private"
)

func (a AccessLevel) Valid() bool {
	return a == AccessPublic || a == AccessPrivate
}

// LockStatus gates structural canvas mutation to members only.
type LockStatus string

const (
	LockUnlocked LockStatus = "unlocked"
	LockLocked   LockStatus = "locked"
)

func (l LockStatus) Valid() bool {
	return l == LockUnlocked || l == LockLocked
}

// Board is the aggregate root for one collaborative whiteboard session.
//
// Invariants:
//   - UID is non-empty and immutable after construction
//   - A board cannot be locked while it has no owner
//   - The owner, when set, is always a member (auto-inserted on assignment)
//   - The owner cannot be removed from members while still owning the board
//
// Membership and lock mutations for a single board are serialized by the
// service layer, so methods here validate against consistent state.
type Board struct {
	UID       string      `json:"uid"`
	Name      string      `json:"name,omitempty"`
	Access    AccessLevel `json:"access_level"`
	Lock      LockStatus  `json:"lock_status"`
	OwnerID   string      `json:"owner_id,omitempty"`
	Members   []string    `json:"members"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewBoard constructs a board and enforces construction invariants. The
// owner, when given, becomes a member immediately.
func NewBoard(uid, name string, access AccessLevel, lock LockStatus, ownerID string, now time.Time) (*Board, error) {
	b := &Board{
		UID:       uid,
		Name:      name,
		Access:    access,
		Lock:      lock,
		OwnerID:   ownerID,
		Members:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ownerID != "" {
		b.Members = append(b.Members, ownerID)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks the full invariant set. Stores call this before persisting
// an updated board so invariants hold at update time, not just construction.
func (b *Board) Validate() error {
	if b.UID == "" {
		return dErrors.New(dErrors.CodeValidation, "board uid is required")
	}
	if !b.Access.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown access level %q", b.Access)
	}
	if !b.Lock.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown lock status %q", b.Lock)
	}
	if b.Lock == LockLocked && b.OwnerID == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "board cannot be locked without an owner")
	}
	if b.OwnerID != "" && !b.IsMember(b.OwnerID) {
		return dErrors.New(dErrors.CodeInvariantViolation, "owner must be a member")
	}
	return nil
}

// Title returns the display name, falling back to the uid-derived default.
func (b *Board) Title() string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("Board #%s", b.UID)
}

func (b *Board) IsMember(userID string) bool {
	return slices.Contains(b.Members, userID)
}

// SetOwner assigns ownership and auto-inserts the owner into the member set.
func (b *Board) SetOwner(userID string, now time.Time) error {
	if userID == "" {
		return dErrors.New(dErrors.CodeValidation, "owner id is required")
	}
	b.OwnerID = userID
	if !b.IsMember(userID) {
		b.Members = append(b.Members, userID)
	}
	b.UpdatedAt = now
	return nil
}

// ClearOwner detaches the owner. Fails while the board is locked: an
// ownerless board can never be locked.
func (b *Board) ClearOwner(now time.Time) error {
	if b.Lock == LockLocked {
		return dErrors.New(dErrors.CodeInvariantViolation, "cannot detach owner from a locked board")
	}
	b.OwnerID = ""
	b.UpdatedAt = now
	return nil
}

// SetLock transitions the lock status, rejecting a lock on ownerless boards.
func (b *Board) SetLock(status LockStatus, now time.Time) error {
	if !status.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown lock status %q", status)
	}
	if status == LockLocked && b.OwnerID == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "board cannot be locked without an owner")
	}
	b.Lock = status
	b.UpdatedAt = now
	return nil
}

// SetAccess transitions the access level.
func (b *Board) SetAccess(level AccessLevel, now time.Time) error {
	if !level.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown access level %q", level)
	}
	b.Access = level
	b.UpdatedAt = now
	return nil
}

// AddMember inserts a user into the member set. Adding an existing member
// is a conflict so callers can tell the difference apart.
func (b *Board) AddMember(userID string, now time.Time) error {
	if userID == "" {
		return dErrors.New(dErrors.CodeValidation, "user id is required")
	}
	if b.IsMember(userID) {
		return dErrors.New(dErrors.CodeConflict, "user is already a member")
	}
	b.Members = append(b.Members, userID)
	b.UpdatedAt = now
	return nil
}

// RemoveMember drops a user from the member set. The current owner can never
// be removed while still owning the board.
func (b *Board) RemoveMember(userID string, now time.Time) error {
	if userID == b.OwnerID && b.OwnerID != "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "cannot remove the board owner")
	}
	i := slices.Index(b.Members, userID)
	if i < 0 {
		return dErrors.New(dErrors.CodeNotFound, "user is not a member")
	}
	b.Members = slices.Delete(b.Members, i, i+1)
	b.UpdatedAt = now
	return nil
}

// Clone returns a deep copy so stores can hand out boards without sharing
// the member slice with callers.
func (b *Board) Clone() *Board {
	dup := *b
	dup.Members = slices.Clone(b.Members)
	if dup.Members == nil {
		dup.Members = []string{}
	}
	return &dup
}
