package jwttoken

import (
	"easel/internal/board/models"
	pstrings "easel/pkg/platform/strings"
)

// CallerAdapter exposes the JWT service through the middleware's
// TokenValidator interface, translating claims into a board caller.
type CallerAdapter struct {
	service *JWTService
}

func NewCallerAdapter(service *JWTService) *CallerAdapter {
	return &CallerAdapter{service: service}
}

func (a *CallerAdapter) ValidateToken(tokenString string) (*models.Caller, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &models.Caller{
		ID:           claims.UserID,
		Capabilities: pstrings.DedupeAndTrim(claims.Capabilities),
	}, nil
}
