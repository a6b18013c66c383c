package avalon

import (
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/avalon-backend/internal/apperror"
	"github.com/rocketscienceinc/avalon-backend/internal/entity"
)

// Start assigns roles and moves the game from the lobby into role reveal.
// The roster must already match the configured player count.
func Start(game *entity.Game) error {
	if !game.IsLobby() {
		return fmt.Errorf("%w: %s", apperror.ErrWrongPhase, game.Phase)
	}

	if err := AssignRoles(game); err != nil {
		return err
	}

	game.Acknowledged = make(map[string]bool, len(game.Players))
	game.LeaderIndex = rand.Intn(len(game.Players))

	if game.Config.WithLadyOfLake {
		// The token starts with the player to the first leader's right.
		holder := game.Players[(game.LeaderIndex+len(game.Players)-1)%len(game.Players)]
		game.Lady = &entity.LadyState{
			Holder:        holder.ID,
			UsesRemaining: 3,
		}
	}

	game.Phase = entity.PhaseRoleReveal

	return nil
}

// AcknowledgeRole records that a player has seen their role. Once every
// player has acknowledged, team building begins. Repeated
// acknowledgements are harmless.
func AcknowledgeRole(game *entity.Game, playerID string) error {
	if game.Phase != entity.PhaseRoleReveal {
		return fmt.Errorf("%w: %s", apperror.ErrWrongPhase, game.Phase)
	}

	if game.PlayerByID(playerID) == nil {
		return fmt.Errorf("%w: %s", apperror.ErrUnknownPlayer, playerID)
	}

	game.Acknowledged[playerID] = true

	if len(game.Acknowledged) == len(game.Players) {
		game.Phase = entity.PhaseTeamBuilding
	}

	return nil
}

// ProposeTeam lets the current leader submit a mission team of exactly
// the required size. A valid proposal opens the voting phase.
func ProposeTeam(game *entity.Game, leaderID string, team []string) error {
	if game.Phase != entity.PhaseTeamBuilding {
		return fmt.Errorf("%w: %s", apperror.ErrWrongPhase, game.Phase)
	}

	leader := game.Leader()
	if leader == nil || leader.ID != leaderID {
		return fmt.Errorf("%w: only the leader proposes teams", apperror.ErrNotAuthorized)
	}

	setup, err := game.CurrentMissionSetup()
	if err != nil {
		return err
	}

	if len(team) != setup.TeamSize {
		return fmt.Errorf("%w: got %d, mission %d needs %d", apperror.ErrInvalidTeamSize, len(team), game.MissionIndex, setup.TeamSize)
	}

	seen := make(map[string]bool, len(team))
	for _, memberID := range team {
		if game.PlayerByID(memberID) == nil {
			return fmt.Errorf("%w: unknown player %s", apperror.ErrInvalidTarget, memberID)
		}
		if seen[memberID] {
			return fmt.Errorf("%w: duplicate player %s", apperror.ErrInvalidTarget, memberID)
		}
		seen[memberID] = true
	}

	game.ProposedTeam = append([]string(nil), team...)
	game.TeamVotes = make(map[string]string, len(game.Players))
	game.Phase = entity.PhaseVoting

	return nil
}

// CastTeamVote records one player's approve/reject vote on the proposed
// team. Votes stay secret until the last one arrives, then the proposal
// resolves: strict majority approves, ties reject.
func CastTeamVote(game *entity.Game, playerID string, approve bool) error {
	if game.Phase != entity.PhaseVoting {
		return fmt.Errorf("%w: %s", apperror.ErrWrongPhase, game.Phase)
	}

	if game.PlayerByID(playerID) == nil {
		return fmt.Errorf("%w: %s", apperror.ErrUnknownPlayer, playerID)
	}

	if _, voted := game.TeamVotes[playerID]; voted {
		return fmt.Errorf("%w: %s", apperror.ErrDuplicateVote, playerID)
	}

	vote := entity.VoteReject
	if approve {
		vote = entity.VoteApprove
	}
	game.TeamVotes[playerID] = vote

	if len(game.TeamVotes) == len(game.Players) {
		resolveTeamVote(game)
	}

	return nil
}

// resolveTeamVote applies the approval rule once every vote is in. The
// vote map is kept for the public reveal and cleared on the next
// proposal.
func resolveTeamVote(game *entity.Game) {
	approvals := 0
	for _, vote := range game.TeamVotes {
		if vote == entity.VoteApprove {
			approvals++
		}
	}

	if approvals*2 > len(game.Players) {
		game.RejectedTeams = 0
		game.MissionVotes = make(map[string]string, len(game.ProposedTeam))
		game.Phase = entity.PhaseMission

		return
	}

	game.RejectedTeams++

	if outcome := Evaluate(game.MissionResults, game.RejectedTeams); outcome != nil {
		game.Finish(outcome.Winner, outcome.Reason)
		return
	}

	game.AdvanceLeader()
	game.ProposedTeam = nil
	game.Phase = entity.PhaseTeamBuilding
}

// CastMissionVote records one team member's secret success/fail card.
// The engine is server-authoritative: a fail card from a good-aligned
// member is rejected outright.
func CastMissionVote(game *entity.Game, playerID string, success bool) error {
	if game.Phase != entity.PhaseMission {
		return fmt.Errorf("%w: %s", apperror.ErrWrongPhase, game.Phase)
	}

	if !game.IsOnProposedTeam(playerID) {
		return fmt.Errorf("%w: not a member of the mission team", apperror.ErrNotAuthorized)
	}

	if _, voted := game.MissionVotes[playerID]; voted {
		return fmt.Errorf("%w: %s", apperror.ErrDuplicateVote, playerID)
	}

	role, err := game.RoleOf(playerID)
	if err != nil {
		return err
	}

	if !success && role.IsGood() {
		return fmt.Errorf("%w: good-aligned members may only play success", apperror.ErrNotAuthorized)
	}

	vote := entity.MissionVoteFail
	if success {
		vote = entity.MissionVoteSuccess
	}
	game.MissionVotes[playerID] = vote

	if len(game.MissionVotes) == len(game.ProposedTeam) {
		return resolveMission(game)
	}

	return nil
}

// resolveMission books the mission result, then either hands the token to
// the Lady of the Lake sub-protocol or advances the game. Individual
// mission cards are discarded; only the fail count is ever revealed.
func resolveMission(game *entity.Game) error {
	setup, err := game.CurrentMissionSetup()
	if err != nil {
		return err
	}

	fails := 0
	for _, vote := range game.MissionVotes {
		if vote == entity.MissionVoteFail {
			fails++
		}
	}

	result := entity.MissionSucceeded
	if fails >= setup.FailsRequired {
		result = entity.MissionFailed
	}

	game.MissionResults = append(game.MissionResults, result)
	game.MissionFailCounts = append(game.MissionFailCounts, fails)
	game.MissionVotes = nil

	if ladyTriggered(game) {
		game.Phase = entity.PhaseLadyOfLake
		return nil
	}

	advanceAfterMission(game)

	return nil
}

// ladyTriggered reports whether the Lady of the Lake interrupts play
// after the mission that just completed.
func ladyTriggered(game *entity.Game) bool {
	return game.Config.WithLadyOfLake &&
		game.Lady != nil &&
		game.Lady.UsesRemaining > 0 &&
		game.MissionIndex >= 2 && game.MissionIndex <= 4
}

// advanceAfterMission runs the win check and either ends the game, opens
// the assassin phase, or lines up the next mission behind a transition
// pause.
func advanceAfterMission(game *entity.Game) {
	if outcome := Evaluate(game.MissionResults, game.RejectedTeams); outcome != nil {
		game.Finish(outcome.Winner, outcome.Reason)
		return
	}

	successes, _ := game.MissionTally()
	if successes >= entity.MissionsToWin {
		enterAssassinPhase(game)
		return
	}

	game.MissionIndex++
	game.AdvanceLeader()
	game.ProposedTeam = nil
	game.TeamVotes = nil
	game.Phase = entity.PhaseTransition
}

// enterAssassinPhase gives evil its last chance. A missing Assassin is
// unreachable with the mandatory role pool, but resolves as a good win
// rather than a stuck game.
func enterAssassinPhase(game *entity.Game) {
	if game.PlayerWithRole(entity.RoleAssassin) == "" {
		game.Finish(entity.AlignmentGood, entity.ReasonAssassinationFailed)
		return
	}

	game.Phase = entity.PhaseAssassin
}

// Continue leaves the transition pause and starts the next team-building
// round. Any participant may send it.
func Continue(game *entity.Game, playerID string) error {
	if game.Phase != entity.PhaseTransition {
		return fmt.Errorf("%w: %s", apperror.ErrWrongPhase, game.Phase)
	}

	if game.PlayerByID(playerID) == nil {
		return fmt.Errorf("%w: %s", apperror.ErrUnknownPlayer, playerID)
	}

	game.Phase = entity.PhaseTeamBuilding

	return nil
}

// Assassinate resolves the assassin's single shot at Merlin and ends the
// game either way.
func Assassinate(game *entity.Game, assassinID, targetID string) (*entity.Outcome, error) {
	if game.Phase != entity.PhaseAssassin {
		return nil, fmt.Errorf("%w: %s", apperror.ErrWrongPhase, game.Phase)
	}

	role, err := game.RoleOf(assassinID)
	if err != nil {
		return nil, err
	}
	if role != entity.RoleAssassin {
		return nil, fmt.Errorf("%w: only the assassin chooses the target", apperror.ErrNotAuthorized)
	}

	if targetID == assassinID {
		return nil, fmt.Errorf("%w: cannot target self", apperror.ErrInvalidTarget)
	}

	targetRole, err := game.RoleOf(targetID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown player %s", apperror.ErrInvalidTarget, targetID)
	}

	outcome := EvaluateAssassination(targetRole)
	game.Finish(outcome.Winner, outcome.Reason)

	return game.Outcome, nil
}
