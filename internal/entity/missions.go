package entity

import (
	"fmt"

	"github.com/rocketscienceinc/avalon-backend/internal/apperror"
)

const (
	MinPlayers = 5
	MaxPlayers = 10

	MissionCount = 5

	// MissionsToWin is the number of mission results of one kind that
	// decides the game.
	MissionsToWin = 3

	// MaxRejectedTeams ends the game with an evil win once reached
	// within a single mission (the "hammer" rule).
	MaxRejectedTeams = 5
)

// MissionSetup describes one mission for a given player count.
type MissionSetup struct {
	TeamSize      int `json:"team_size"`
	FailsRequired int `json:"fails_required"`
}

// missionTable is the rulebook lookup keyed by player count. Mission 4
// needs two fail cards with seven or more players.
var missionTable = map[int][MissionCount]MissionSetup{
	5:  {{2, 1}, {3, 1}, {2, 1}, {3, 1}, {3, 1}},
	6:  {{2, 1}, {3, 1}, {4, 1}, {3, 1}, {4, 1}},
	7:  {{2, 1}, {3, 1}, {3, 1}, {4, 2}, {4, 1}},
	8:  {{3, 1}, {4, 1}, {4, 1}, {5, 2}, {5, 1}},
	9:  {{3, 1}, {4, 1}, {4, 1}, {5, 2}, {5, 1}},
	10: {{3, 1}, {4, 1}, {4, 1}, {5, 2}, {5, 1}},
}

// evilQuotaTable is the rulebook count of evil roles per player count.
// It is an explicit table, not a formula.
var evilQuotaTable = map[int]int{
	5:  2,
	6:  2,
	7:  3,
	8:  3,
	9:  3,
	10: 4,
}

// MissionSetupFor returns the team size and fail threshold for the given
// mission number (1-based).
func MissionSetupFor(playerCount, mission int) (MissionSetup, error) {
	missions, ok := missionTable[playerCount]
	if !ok {
		return MissionSetup{}, fmt.Errorf("%w: unsupported player count %d", apperror.ErrConfigurationInvalid, playerCount)
	}

	if mission < 1 || mission > MissionCount {
		return MissionSetup{}, fmt.Errorf("%w: mission %d out of range", apperror.ErrConfigurationInvalid, mission)
	}

	return missions[mission-1], nil
}

// EvilQuota returns the number of evil roles for the given player count.
func EvilQuota(playerCount int) (int, error) {
	quota, ok := evilQuotaTable[playerCount]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported player count %d", apperror.ErrConfigurationInvalid, playerCount)
	}

	return quota, nil
}
