package apperror

import "errors"

var (
	ErrWrongPhase           = errors.New("action is not valid in the current phase")
	ErrNotAuthorized        = errors.New("player is not authorized to perform this action")
	ErrInvalidTeamSize      = errors.New("proposed team has the wrong size")
	ErrDuplicateVote        = errors.New("player has already voted this round")
	ErrInvalidTarget        = errors.New("target is not a valid choice")
	ErrConfigurationInvalid = errors.New("game configuration is invalid")

	ErrGameFinished   = errors.New("game is already finished")
	ErrGameNotStarted = errors.New("game is not started")
	ErrGameFull       = errors.New("game already has a full roster")
	ErrUnknownPlayer  = errors.New("player is not part of this game")
)
