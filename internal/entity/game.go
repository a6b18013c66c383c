package entity

import (
	"fmt"

	"github.com/rocketscienceinc/avalon-backend/internal/apperror"
)

const (
	PhaseLobby        = "lobby"
	PhaseRoleReveal   = "role_reveal"
	PhaseTeamBuilding = "team_building"
	PhaseVoting       = "voting"
	PhaseMission      = "mission"
	PhaseLadyOfLake   = "lady_of_lake"
	PhaseTransition   = "transition"
	PhaseAssassin     = "assassin"
	PhaseGameOver     = "game_over"
)

const (
	VoteApprove = "approve"
	VoteReject  = "reject"

	MissionVoteSuccess = "success"
	MissionVoteFail    = "fail"

	MissionSucceeded = "succeeded"
	MissionFailed    = "failed"
)

const (
	ReasonThreeFailedMissions = "three failed missions"
	ReasonFiveRejectedTeams   = "five rejected teams"
	ReasonMerlinAssassinated  = "Merlin assassinated"
	ReasonAssassinationFailed = "assassination failed"
)

// LadyState tracks custody of the Lady of the Lake token. PastHolders
// lists everyone who has already held the token; they are ineligible as
// examination targets.
type LadyState struct {
	Holder        string   `json:"holder"`
	PastHolders   []string `json:"past_holders,omitempty"`
	UsesRemaining int      `json:"uses_remaining"`
}

// Outcome is set exactly once, at game end.
type Outcome struct {
	Winner Alignment `json:"winner"`
	Reason string    `json:"reason"`
}

// Game is the canonical mutable state of one Avalon session. It is
// persisted as a JSON value and mutated only through the rules package.
type Game struct {
	ID     string     `json:"id"`
	Phase  string     `json:"phase"`
	Config GameConfig `json:"config"`

	// Players is the fixed seating order; the leader index walks it.
	Players []*Player `json:"players,omitempty"`

	// Roles maps player id to role. Assigned once, never mutated.
	Roles map[string]Role `json:"roles,omitempty"`

	// DecoyID marks the good player shown to Merlin as a fake evil when
	// chaos mode is on. Cosmetic only; no rule reads it.
	DecoyID string `json:"decoy_id,omitempty"`

	Acknowledged map[string]bool `json:"acknowledged,omitempty"`

	MissionIndex      int      `json:"mission_index"`
	MissionResults    []string `json:"mission_results,omitempty"`
	MissionFailCounts []int    `json:"mission_fail_counts,omitempty"`

	RejectedTeams int `json:"rejected_teams"`
	LeaderIndex   int `json:"leader_index"`

	ProposedTeam []string          `json:"proposed_team,omitempty"`
	TeamVotes    map[string]string `json:"team_votes,omitempty"`
	MissionVotes map[string]string `json:"mission_votes,omitempty"`

	Lady    *LadyState `json:"lady,omitempty"`
	Outcome *Outcome   `json:"outcome,omitempty"`
}

func NewGame(id string, config GameConfig) *Game {
	return &Game{
		ID:           id,
		Phase:        PhaseLobby,
		Config:       config,
		MissionIndex: 1,
	}
}

func (that *Game) IsLobby() bool {
	return that.Phase == PhaseLobby
}

func (that *Game) IsFinished() bool {
	return that.Phase == PhaseGameOver
}

func (that *Game) IsFull() bool {
	return len(that.Players) >= that.Config.PlayerCount
}

// ConfirmRunningState rejects actions against games that never started
// or are already decided.
func (that *Game) ConfirmRunningState() error {
	switch {
	case that.IsLobby():
		return apperror.ErrGameNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	default:
		return nil
	}
}

func (that *Game) Leader() *Player {
	if len(that.Players) == 0 {
		return nil
	}

	return that.Players[that.LeaderIndex%len(that.Players)]
}

// AdvanceLeader moves leadership one seat clockwise.
func (that *Game) AdvanceLeader() {
	if len(that.Players) == 0 {
		return
	}

	that.LeaderIndex = (that.LeaderIndex + 1) % len(that.Players)
}

func (that *Game) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

// RoleOf returns the assigned role for a player id.
func (that *Game) RoleOf(id string) (Role, error) {
	role, ok := that.Roles[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", apperror.ErrUnknownPlayer, id)
	}

	return role, nil
}

// PlayerWithRole returns the id of the player holding the given role, or
// an empty string if the role is not in play.
func (that *Game) PlayerWithRole(role Role) string {
	for id, assigned := range that.Roles {
		if assigned == role {
			return id
		}
	}

	return ""
}

func (that *Game) IsOnProposedTeam(id string) bool {
	for _, member := range that.ProposedTeam {
		if member == id {
			return true
		}
	}

	return false
}

// CurrentMissionSetup looks up the team size and fail threshold for the
// mission in progress.
func (that *Game) CurrentMissionSetup() (MissionSetup, error) {
	return MissionSetupFor(that.Config.PlayerCount, that.MissionIndex)
}

// MissionTally counts succeeded and failed entries so far.
func (that *Game) MissionTally() (successes, failures int) {
	for _, result := range that.MissionResults {
		if result == MissionSucceeded {
			successes++
		} else {
			failures++
		}
	}

	return successes, failures
}

// Finish records the outcome and makes the game terminal. It is a no-op
// if an outcome is already set.
func (that *Game) Finish(winner Alignment, reason string) {
	if that.Outcome != nil {
		return
	}

	that.Outcome = &Outcome{Winner: winner, Reason: reason}
	that.Phase = PhaseGameOver
}
