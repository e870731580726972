package handler

import (
	"encoding/json"
	"time"

	"easel/internal/board/models"
)

type createBoardRequest struct {
	Name        string `json:"name"`
	AccessLevel string `json:"access_level"`
	LockStatus  string `json:"lock_status"`
	Canvas      struct {
		Objects []json.RawMessage `json:"objects"`
		Options map[string]string `json:"options"`
	} `json:"canvas"`
}

type updateBoardRequest struct {
	Name        *string `json:"name"`
	AccessLevel *string `json:"access_level"`
	LockStatus  *string `json:"lock_status"`
}

type memberRequest struct {
	UserID string `json:"user_id"`
}

type boardResponse struct {
	UID         string    `json:"uid"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	AccessLevel string    `json:"access_level"`
	LockStatus  string    `json:"lock_status"`
	OwnerID     string    `json:"owner_id,omitempty"`
	Members     []string  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type listBoardsResponse struct {
	Boards []boardResponse `json:"boards"`
}

func newBoardResponse(b *models.Board) boardResponse {
	members := b.Members
	if members == nil {
		members = []string{}
	}
	return boardResponse{
		UID:         b.UID,
		Name:        b.Name,
		Title:       b.Title(),
		AccessLevel: string(b.Access),
		LockStatus:  string(b.Lock),
		OwnerID:     b.OwnerID,
		Members:     members,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
