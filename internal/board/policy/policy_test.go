package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"easel/internal/board/models"
)

func lockedBoard(t *testing.T) *models.Board {
	t.Helper()
	b, err := models.NewBoard("a1b2c3d4", "", models.AccessPrivate, models.LockLocked, "u1", time.Now())
	require.NoError(t, err)
	require.NoError(t, b.AddMember("u2", time.Now()))
	return b
}

func unlockedBoard(t *testing.T) *models.Board {
	t.Helper()
	b, err := models.NewBoard("a1b2c3d4", "", models.AccessPublic, models.LockUnlocked, "u1", time.Now())
	require.NoError(t, err)
	require.NoError(t, b.AddMember("u2", time.Now()))
	return b
}

func TestAuthorize_StructuralLocked(t *testing.T) {
	b := lockedBoard(t)

	assert.True(t, Authorize(b, &models.Caller{ID: "u1"}, models.CommandObjectCreate), "owner")
	assert.True(t, Authorize(b, &models.Caller{ID: "u2"}, models.CommandObjectCreate), "member")
	assert.False(t, Authorize(b, &models.Caller{ID: "u3"}, models.CommandObjectCreate), "non-member")
	assert.False(t, Authorize(b, nil, models.CommandObjectCreate), "anonymous")
}

func TestAuthorize_StructuralUnlocked(t *testing.T) {
	b := unlockedBoard(t)

	for _, cmd := range []string{
		models.CommandObjectCreate,
		models.CommandObjectModify,
		models.CommandOptionChange,
		models.CommandBoardClear,
	} {
		assert.True(t, Authorize(b, &models.Caller{ID: "u1"}, cmd), cmd)
		assert.True(t, Authorize(b, &models.Caller{ID: "u2"}, cmd), cmd)
		assert.True(t, Authorize(b, &models.Caller{ID: "u3"}, cmd), cmd)
		assert.True(t, Authorize(b, nil, cmd), cmd)
	}
}

func TestAuthorize_PointerCommands(t *testing.T) {
	b := unlockedBoard(t)
	entitled := &models.Caller{ID: "u1", Capabilities: []string{models.CapabilityPointer}}
	plain := &models.Caller{ID: "u1"}

	assert.True(t, Authorize(b, entitled, models.CommandPointerMove))
	assert.True(t, Authorize(b, entitled, models.CommandPointerFlash))
	assert.False(t, Authorize(b, plain, models.CommandPointerMove), "no capability")
	assert.False(t, Authorize(b, nil, models.CommandPointerMove), "anonymous")
}

func TestAuthorize_DefaultDeny(t *testing.T) {
	b := unlockedBoard(t)

	for _, cmd := range []string{"board", "", "chat:message", "object:delete"} {
		assert.False(t, Authorize(b, &models.Caller{ID: "u1"}, cmd), "command %q must be denied", cmd)
		assert.False(t, Authorize(b, nil, cmd))
	}
}
