package avalon

import (
	"fmt"

	"github.com/rocketscienceinc/avalon-backend/internal/apperror"
	"github.com/rocketscienceinc/avalon-backend/internal/entity"
)

// ExamineLoyalty performs one pass of the Lady of the Lake: the current
// holder learns the target's true alignment, the token moves to the
// target, and play resumes. The result is disclosed to the holder only;
// callers must not broadcast it. Examination is mandatory once the phase
// is entered.
func ExamineLoyalty(game *entity.Game, holderID, targetID string) (entity.Alignment, error) {
	if game.Phase != entity.PhaseLadyOfLake {
		return "", fmt.Errorf("%w: %s", apperror.ErrWrongPhase, game.Phase)
	}

	lady := game.Lady
	if lady == nil {
		return "", fmt.Errorf("%w: lady of the lake is not enabled", apperror.ErrWrongPhase)
	}

	if holderID != lady.Holder {
		return "", fmt.Errorf("%w: only the token holder examines", apperror.ErrNotAuthorized)
	}

	if targetID == holderID {
		return "", fmt.Errorf("%w: cannot examine self", apperror.ErrInvalidTarget)
	}

	for _, pastID := range lady.PastHolders {
		if pastID == targetID {
			return "", fmt.Errorf("%w: %s already held the token", apperror.ErrInvalidTarget, targetID)
		}
	}

	targetRole, err := game.RoleOf(targetID)
	if err != nil {
		return "", fmt.Errorf("%w: unknown player %s", apperror.ErrInvalidTarget, targetID)
	}

	lady.PastHolders = append(lady.PastHolders, holderID)
	lady.Holder = targetID
	lady.UsesRemaining--

	advanceAfterMission(game)

	return targetRole.Alignment(), nil
}
