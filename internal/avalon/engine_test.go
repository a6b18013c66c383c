package avalon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/avalon-backend/internal/apperror"
	"github.com/rocketscienceinc/avalon-backend/internal/entity"
)

// startedGame pins roles and drops the game straight into team building
// with the leader at seat 0.
func startedGame(t *testing.T, roles ...entity.Role) *entity.Game {
	t.Helper()

	game := fixedRoleGame(t, roles...)
	game.Phase = entity.PhaseTeamBuilding
	game.LeaderIndex = 0
	game.Acknowledged = make(map[string]bool)

	return game
}

func startedFiveGame(t *testing.T) *entity.Game {
	t.Helper()

	// p1 Merlin, p2..p3 servants, p4 Assassin, p5 Minion
	return startedGame(t,
		entity.RoleMerlin, entity.RoleLoyalServant, entity.RoleLoyalServant,
		entity.RoleAssassin, entity.RoleMinion,
	)
}

// approveTeam proposes the given team as the current leader and has every
// player approve it.
func approveTeam(t *testing.T, game *entity.Game, team []string) {
	t.Helper()

	require.NoError(t, ProposeTeam(game, game.Leader().ID, team))
	for _, player := range game.Players {
		require.NoError(t, CastTeamVote(game, player.ID, true))
	}
	require.Equal(t, entity.PhaseMission, game.Phase)
}

// playMission runs one full mission with the given team; evil members on
// the team play fail when sabotage is set.
func playMission(t *testing.T, game *entity.Game, team []string, sabotage bool) {
	t.Helper()

	approveTeam(t, game, team)

	for _, memberID := range team {
		success := true
		if sabotage && game.Roles[memberID].IsEvil() {
			success = false
		}
		require.NoError(t, CastMissionVote(game, memberID, success))
	}
}

func TestStart(t *testing.T) {
	t.Run("Moves a full lobby into role reveal", func(t *testing.T) {
		// Given: a full 5 player lobby
		game := newLobbyGame(t, entity.GameConfig{PlayerCount: 5})

		// When: the game starts
		require.NoError(t, Start(game))

		// Then: roles are assigned and reveal begins
		assert.Equal(t, entity.PhaseRoleReveal, game.Phase)
		assert.Len(t, game.Roles, 5)
		assert.Nil(t, game.Lady)
	})

	t.Run("Seeds the Lady of the Lake to the first leader's right", func(t *testing.T) {
		game := newLobbyGame(t, entity.GameConfig{PlayerCount: 6, WithLadyOfLake: true})

		require.NoError(t, Start(game))

		require.NotNil(t, game.Lady)
		assert.Equal(t, 3, game.Lady.UsesRemaining)

		rightOfLeader := game.Players[(game.LeaderIndex+len(game.Players)-1)%len(game.Players)]
		assert.Equal(t, rightOfLeader.ID, game.Lady.Holder)
	})

	t.Run("Refuses to start twice", func(t *testing.T) {
		game := newLobbyGame(t, entity.GameConfig{PlayerCount: 5})
		require.NoError(t, Start(game))

		assert.ErrorIs(t, Start(game), apperror.ErrWrongPhase)
	})
}

func TestAcknowledgeRole(t *testing.T) {
	game := newLobbyGame(t, entity.GameConfig{PlayerCount: 5})
	require.NoError(t, Start(game))

	// Given: four of five players have seen their role
	for _, player := range game.Players[:4] {
		require.NoError(t, AcknowledgeRole(game, player.ID))
	}
	assert.Equal(t, entity.PhaseRoleReveal, game.Phase)

	// When: one of them acknowledges again
	require.NoError(t, AcknowledgeRole(game, game.Players[0].ID))

	// Then: the repeat is harmless and the game still waits
	assert.Equal(t, entity.PhaseRoleReveal, game.Phase)

	// When: the last player acknowledges
	require.NoError(t, AcknowledgeRole(game, game.Players[4].ID))

	// Then: team building begins
	assert.Equal(t, entity.PhaseTeamBuilding, game.Phase)
}

func TestProposeTeam(t *testing.T) {
	t.Run("Only the leader proposes", func(t *testing.T) {
		game := startedFiveGame(t)

		err := ProposeTeam(game, "p2", []string{"p1", "p2"})
		assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
	})

	t.Run("Team size must match the mission exactly", func(t *testing.T) {
		// Given: mission 1 for 5 players needs exactly 2 members
		game := startedFiveGame(t)

		// Then: one short and one long are both rejected
		assert.ErrorIs(t, ProposeTeam(game, "p1", []string{"p1"}), apperror.ErrInvalidTeamSize)
		assert.ErrorIs(t, ProposeTeam(game, "p1", []string{"p1", "p2", "p3"}), apperror.ErrInvalidTeamSize)

		// And: the exact size opens voting
		require.NoError(t, ProposeTeam(game, "p1", []string{"p1", "p2"}))
		assert.Equal(t, entity.PhaseVoting, game.Phase)
	})

	t.Run("Duplicate and unknown members are rejected", func(t *testing.T) {
		game := startedFiveGame(t)

		assert.ErrorIs(t, ProposeTeam(game, "p1", []string{"p2", "p2"}), apperror.ErrInvalidTarget)
		assert.ErrorIs(t, ProposeTeam(game, "p1", []string{"p2", "stranger"}), apperror.ErrInvalidTarget)
		assert.Equal(t, entity.PhaseTeamBuilding, game.Phase)
	})
}

func TestCastTeamVote(t *testing.T) {
	t.Run("Strict majority approves the team", func(t *testing.T) {
		// Given: a proposed team and 3 of 5 approvals
		game := startedFiveGame(t)
		require.NoError(t, ProposeTeam(game, "p1", []string{"p1", "p2"}))

		require.NoError(t, CastTeamVote(game, "p1", true))
		require.NoError(t, CastTeamVote(game, "p2", true))
		require.NoError(t, CastTeamVote(game, "p3", true))
		require.NoError(t, CastTeamVote(game, "p4", false))

		// When: the last vote lands
		require.NoError(t, CastTeamVote(game, "p5", false))

		// Then: the mission starts and the rejection streak resets
		assert.Equal(t, entity.PhaseMission, game.Phase)
		assert.Zero(t, game.RejectedTeams)
		assert.NotNil(t, game.MissionVotes)
	})

	t.Run("A split vote rejects and passes the lead", func(t *testing.T) {
		game := startedFiveGame(t)
		require.NoError(t, ProposeTeam(game, "p1", []string{"p1", "p2"}))

		for i, player := range game.Players {
			require.NoError(t, CastTeamVote(game, player.ID, i < 2))
		}

		assert.Equal(t, entity.PhaseTeamBuilding, game.Phase)
		assert.Equal(t, 1, game.RejectedTeams)
		assert.Equal(t, "p2", game.Leader().ID)
		assert.Nil(t, game.ProposedTeam)
		// The vote breakdown stays visible until the next proposal.
		assert.Len(t, game.TeamVotes, 5)
	})

	t.Run("Double voting is rejected", func(t *testing.T) {
		game := startedFiveGame(t)
		require.NoError(t, ProposeTeam(game, "p1", []string{"p1", "p2"}))

		require.NoError(t, CastTeamVote(game, "p3", true))

		err := CastTeamVote(game, "p3", false)
		assert.ErrorIs(t, err, apperror.ErrDuplicateVote)
		assert.Equal(t, entity.VoteApprove, game.TeamVotes["p3"])
	})

	t.Run("The fifth straight rejection hands evil the win", func(t *testing.T) {
		// Given: four rejected proposals already on the books
		game := startedFiveGame(t)

		for round := 0; round < 4; round++ {
			require.NoError(t, ProposeTeam(game, game.Leader().ID, []string{"p1", "p2"}))
			for _, player := range game.Players {
				require.NoError(t, CastTeamVote(game, player.ID, false))
			}
		}
		require.Equal(t, 4, game.RejectedTeams)

		// When: the fifth proposal is voted down as well
		require.NoError(t, ProposeTeam(game, game.Leader().ID, []string{"p1", "p2"}))
		for _, player := range game.Players {
			require.NoError(t, CastTeamVote(game, player.ID, false))
		}

		// Then: the game ends for evil without any mission played
		require.True(t, game.IsFinished())
		assert.Equal(t, entity.AlignmentEvil, game.Outcome.Winner)
		assert.Equal(t, entity.ReasonFiveRejectedTeams, game.Outcome.Reason)
	})
}

func TestCastMissionVote(t *testing.T) {
	t.Run("Only team members play cards", func(t *testing.T) {
		game := startedFiveGame(t)
		approveTeam(t, game, []string{"p1", "p2"})

		err := CastMissionVote(game, "p3", true)
		assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
	})

	t.Run("Good members cannot play fail", func(t *testing.T) {
		// Given: Merlin on the mission team
		game := startedFiveGame(t)
		approveTeam(t, game, []string{"p1", "p2"})

		// When: Merlin tries to sabotage
		err := CastMissionVote(game, "p1", false)

		// Then: the card is rejected and nothing is recorded
		assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
		assert.Empty(t, game.MissionVotes)
	})

	t.Run("A clean team succeeds the mission", func(t *testing.T) {
		game := startedFiveGame(t)
		playMission(t, game, []string{"p1", "p2"}, false)

		require.Equal(t, []string{entity.MissionSucceeded}, game.MissionResults)
		assert.Equal(t, []int{0}, game.MissionFailCounts)
		assert.Equal(t, entity.PhaseTransition, game.Phase)
		assert.Equal(t, 2, game.MissionIndex)
		// Individual cards are discarded once the mission resolves.
		assert.Nil(t, game.MissionVotes)
	})

	t.Run("One fail card sinks an early mission", func(t *testing.T) {
		// Given: the Assassin slips onto the mission 1 team
		game := startedFiveGame(t)
		playMission(t, game, []string{"p1", "p4"}, true)

		// Then: the mission fails with a public fail count of one
		require.Equal(t, []string{entity.MissionFailed}, game.MissionResults)
		assert.Equal(t, []int{1}, game.MissionFailCounts)
	})

	t.Run("Double cards are rejected", func(t *testing.T) {
		game := startedFiveGame(t)
		approveTeam(t, game, []string{"p1", "p2"})

		require.NoError(t, CastMissionVote(game, "p1", true))
		assert.ErrorIs(t, CastMissionVote(game, "p1", true), apperror.ErrDuplicateVote)
	})
}

func TestMissionFourNeedsTwoFailsAtSeven(t *testing.T) {
	// Given: a 7 player game on mission 4 with one saboteur on a team of 4
	// p1 Merlin, p2..p4 servants, p5 Assassin, p6..p7 minions
	game := startedGame(t,
		entity.RoleMerlin, entity.RoleLoyalServant, entity.RoleLoyalServant, entity.RoleLoyalServant,
		entity.RoleAssassin, entity.RoleMinion, entity.RoleMinion,
	)
	game.MissionIndex = 4
	game.MissionResults = []string{entity.MissionSucceeded, entity.MissionFailed, entity.MissionSucceeded}

	// When: exactly one fail card is played
	playMission(t, game, []string{"p1", "p2", "p3", "p5"}, true)

	// Then: a single fail is not enough on mission 4
	require.Len(t, game.MissionResults, 4)
	assert.Equal(t, entity.MissionSucceeded, game.MissionResults[3])
	assert.Equal(t, 1, game.MissionFailCounts[0])
}

func TestContinue(t *testing.T) {
	game := startedFiveGame(t)
	playMission(t, game, []string{"p1", "p2"}, false)
	require.Equal(t, entity.PhaseTransition, game.Phase)

	t.Run("Rejects unknown players", func(t *testing.T) {
		assert.ErrorIs(t, Continue(game, "stranger"), apperror.ErrUnknownPlayer)
	})

	t.Run("Any participant resumes play", func(t *testing.T) {
		require.NoError(t, Continue(game, "p3"))
		assert.Equal(t, entity.PhaseTeamBuilding, game.Phase)

		assert.ErrorIs(t, Continue(game, "p3"), apperror.ErrWrongPhase)
	})
}

func TestThreeSuccessesOpenTheAssassinPhase(t *testing.T) {
	// Given: a 5 player game played clean by good
	game := startedFiveGame(t)

	playMission(t, game, []string{"p1", "p2"}, false)
	require.NoError(t, Continue(game, "p1"))

	playMission(t, game, []string{"p1", "p2", "p3"}, false)
	require.NoError(t, Continue(game, "p1"))

	// When: the third mission succeeds
	playMission(t, game, []string{"p1", "p2"}, false)

	// Then: good does not win outright; the assassin gets a shot
	require.Equal(t, []string{entity.MissionSucceeded, entity.MissionSucceeded, entity.MissionSucceeded}, game.MissionResults)
	assert.Equal(t, entity.PhaseAssassin, game.Phase)
	assert.False(t, game.IsFinished())
	assert.Nil(t, Evaluate(game.MissionResults, game.RejectedTeams))
}

func TestThreeFailuresEndTheGame(t *testing.T) {
	// Given: the Assassin rides every team
	game := startedFiveGame(t)

	playMission(t, game, []string{"p1", "p4"}, true)
	require.NoError(t, Continue(game, "p1"))

	playMission(t, game, []string{"p1", "p2", "p4"}, true)
	require.NoError(t, Continue(game, "p1"))

	// When: the third mission fails
	playMission(t, game, []string{"p1", "p4"}, true)

	// Then: evil wins immediately, no transition follows
	require.True(t, game.IsFinished())
	assert.Equal(t, entity.AlignmentEvil, game.Outcome.Winner)
	assert.Equal(t, entity.ReasonThreeFailedMissions, game.Outcome.Reason)
}

func TestAssassinate(t *testing.T) {
	assassinReady := func(t *testing.T) *entity.Game {
		t.Helper()

		game := startedFiveGame(t)
		game.Phase = entity.PhaseAssassin
		game.MissionResults = []string{entity.MissionSucceeded, entity.MissionSucceeded, entity.MissionSucceeded}

		return game
	}

	t.Run("Hitting Merlin steals the game for evil", func(t *testing.T) {
		game := assassinReady(t)

		outcome, err := Assassinate(game, "p4", "p1")

		require.NoError(t, err)
		assert.Equal(t, entity.AlignmentEvil, outcome.Winner)
		assert.Equal(t, entity.ReasonMerlinAssassinated, outcome.Reason)
		assert.True(t, game.IsFinished())
	})

	t.Run("Missing Merlin confirms the good win", func(t *testing.T) {
		game := assassinReady(t)

		outcome, err := Assassinate(game, "p4", "p2")

		require.NoError(t, err)
		assert.Equal(t, entity.AlignmentGood, outcome.Winner)
		assert.Equal(t, entity.ReasonAssassinationFailed, outcome.Reason)
	})

	t.Run("Only the assassin shoots", func(t *testing.T) {
		game := assassinReady(t)

		_, err := Assassinate(game, "p5", "p1")
		assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
		assert.False(t, game.IsFinished())
	})

	t.Run("Self and unknown targets are rejected", func(t *testing.T) {
		game := assassinReady(t)

		_, err := Assassinate(game, "p4", "p4")
		assert.ErrorIs(t, err, apperror.ErrInvalidTarget)

		_, err = Assassinate(game, "p4", "stranger")
		assert.ErrorIs(t, err, apperror.ErrInvalidTarget)
	})
}
