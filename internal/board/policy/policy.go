// Package policy holds the access decision for channel commands. It is a
// pure function over board state and caller identity so it can be tested
// exhaustively and never touches storage.
package policy

import (
	"easel/internal/board/models"
)

// Authorize decides whether caller may run the named command on a board in
// the given state. Rules, first match wins:
//
//   - structural commands on a locked board: members only, anonymous denied
//   - structural commands on an unlocked board: anyone, anonymous included
//   - pointer commands: caller must hold the pointer capability
//   - everything else: denied
func Authorize(board *models.Board, caller *models.Caller, command string) bool {
	switch {
	case models.StructuralCommand(command):
		if board.Lock == models.LockLocked {
			return caller != nil && board.IsMember(caller.ID)
		}
		return true
	case models.PointerCommand(command):
		return caller.Can(models.CapabilityPointer)
	default:
		return false
	}
}
