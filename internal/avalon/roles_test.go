package avalon

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/avalon-backend/internal/apperror"
	"github.com/rocketscienceinc/avalon-backend/internal/entity"
)

func newLobbyGame(t *testing.T, config entity.GameConfig) *entity.Game {
	t.Helper()

	game := entity.NewGame("ROOM42", config)
	for i := 0; i < config.PlayerCount; i++ {
		game.Players = append(game.Players, &entity.Player{
			ID:     fmt.Sprintf("p%d", i+1),
			Name:   fmt.Sprintf("Player %d", i+1),
			GameID: game.ID,
		})
	}

	return game
}

func countAlignments(roles map[string]entity.Role) (good, evil int) {
	for _, role := range roles {
		if role.IsGood() {
			good++
		} else {
			evil++
		}
	}

	return good, evil
}

func TestAssignRoles(t *testing.T) {
	t.Run("Every player count honors the evil quota", func(t *testing.T) {
		for playerCount := entity.MinPlayers; playerCount <= entity.MaxPlayers; playerCount++ {
			// Given: a full lobby with no optional roles
			game := newLobbyGame(t, entity.GameConfig{PlayerCount: playerCount})

			// When: roles are assigned
			require.NoError(t, AssignRoles(game))

			// Then: every player has a role, quotas hold, Merlin and
			// Assassin are always in play
			require.Len(t, game.Roles, playerCount)

			quota, err := entity.EvilQuota(playerCount)
			require.NoError(t, err)

			good, evil := countAlignments(game.Roles)
			assert.Equal(t, quota, evil, "playerCount=%d", playerCount)
			assert.Equal(t, playerCount-quota, good, "playerCount=%d", playerCount)

			assert.NotEmpty(t, game.PlayerWithRole(entity.RoleMerlin))
			assert.NotEmpty(t, game.PlayerWithRole(entity.RoleAssassin))
		}
	})

	t.Run("Optional roles appear exactly once when enabled", func(t *testing.T) {
		// Given: 10 players with every optional role switched on
		game := newLobbyGame(t, entity.GameConfig{
			PlayerCount:  10,
			WithPercival: true,
			WithMorgana:  true,
			WithMordred:  true,
			WithOberon:   true,
		})

		// When: roles are assigned
		require.NoError(t, AssignRoles(game))

		// Then: each enabled role is held by exactly one player
		held := make(map[entity.Role]int)
		for _, role := range game.Roles {
			held[role]++
		}

		for _, role := range []entity.Role{
			entity.RoleMerlin, entity.RolePercival, entity.RoleMorgana,
			entity.RoleAssassin, entity.RoleMordred, entity.RoleOberon,
		} {
			assert.Equal(t, 1, held[role], "role=%s", role)
		}
	})

	t.Run("Disabled optional roles never appear", func(t *testing.T) {
		game := newLobbyGame(t, entity.GameConfig{PlayerCount: 7})

		require.NoError(t, AssignRoles(game))

		for _, role := range []entity.Role{entity.RolePercival, entity.RoleMorgana, entity.RoleMordred, entity.RoleOberon} {
			assert.Empty(t, game.PlayerWithRole(role), "role=%s", role)
		}
	})

	t.Run("Rejects a roster that does not match the configured count", func(t *testing.T) {
		// Given: a 6 player config but only 5 seated players
		game := newLobbyGame(t, entity.GameConfig{PlayerCount: 6})
		game.Players = game.Players[:5]

		// Then: assignment refuses to start
		err := AssignRoles(game)
		assert.ErrorIs(t, err, apperror.ErrConfigurationInvalid)
	})

	t.Run("Chaos mode marks a good non-Merlin decoy", func(t *testing.T) {
		game := newLobbyGame(t, entity.GameConfig{PlayerCount: 7, WithChaosForMerlin: true})

		require.NoError(t, AssignRoles(game))

		require.NotEmpty(t, game.DecoyID)
		decoyRole := game.Roles[game.DecoyID]
		assert.True(t, decoyRole.IsGood())
		assert.NotEqual(t, entity.RoleMerlin, decoyRole)
	})
}

// fixedRoleGame seats len(roles) players and pins the role assignment so
// visibility and engine tests are deterministic.
func fixedRoleGame(t *testing.T, roles ...entity.Role) *entity.Game {
	t.Helper()

	game := newLobbyGame(t, entity.GameConfig{PlayerCount: len(roles)})
	game.Roles = make(map[string]entity.Role, len(roles))
	for i, role := range roles {
		game.Roles[game.Players[i].ID] = role
	}

	return game
}

func TestVisibleIntel(t *testing.T) {
	// Given: a pinned 7 player setup exercising every special role
	// p1 Merlin, p2 Percival, p3..p4 servants, p5 Morgana, p6 Assassin, p7 Mordred
	game := fixedRoleGame(t,
		entity.RoleMerlin, entity.RolePercival, entity.RoleLoyalServant, entity.RoleLoyalServant,
		entity.RoleMorgana, entity.RoleAssassin, entity.RoleMordred,
	)

	hintsFor := func(viewerID string) map[string]string {
		intel, err := VisibleIntel(game, viewerID)
		require.NoError(t, err)

		hints := make(map[string]string, len(intel))
		for _, entry := range intel {
			hints[entry.PlayerID] = entry.Hint
		}

		return hints
	}

	t.Run("Merlin sees evil except Mordred", func(t *testing.T) {
		assert.Equal(t, map[string]string{"p5": HintEvil, "p6": HintEvil}, hintsFor("p1"))
	})

	t.Run("Percival sees Merlin and Morgana as indistinguishable candidates", func(t *testing.T) {
		assert.Equal(t, map[string]string{"p1": HintMerlinCandidate, "p5": HintMerlinCandidate}, hintsFor("p2"))
	})

	t.Run("Loyal servants see nobody", func(t *testing.T) {
		assert.Empty(t, hintsFor("p3"))
	})

	t.Run("Evil players see each other, Mordred included", func(t *testing.T) {
		assert.Equal(t, map[string]string{"p5": HintEvil, "p7": HintEvil}, hintsFor("p6"))
	})

	t.Run("Unknown viewer is rejected", func(t *testing.T) {
		_, err := VisibleIntel(game, "stranger")
		assert.ErrorIs(t, err, apperror.ErrUnknownPlayer)
	})
}

func TestVisibleIntelOberon(t *testing.T) {
	// Given: a pinned 7 player setup with Oberon in play
	// p1 Merlin, p2..p4 servants, p5 Assassin, p6 Minion, p7 Oberon
	game := fixedRoleGame(t,
		entity.RoleMerlin, entity.RoleLoyalServant, entity.RoleLoyalServant, entity.RoleLoyalServant,
		entity.RoleAssassin, entity.RoleMinion, entity.RoleOberon,
	)

	t.Run("Oberon is hidden from his own side", func(t *testing.T) {
		intel, err := VisibleIntel(game, "p5")
		require.NoError(t, err)

		require.Len(t, intel, 1)
		assert.Equal(t, Intel{PlayerID: "p6", Hint: HintEvil}, intel[0])
	})

	t.Run("Oberon himself sees nobody", func(t *testing.T) {
		intel, err := VisibleIntel(game, "p7")
		require.NoError(t, err)
		assert.Empty(t, intel)
	})

	t.Run("Merlin still sees Oberon", func(t *testing.T) {
		intel, err := VisibleIntel(game, "p1")
		require.NoError(t, err)

		hints := make(map[string]string, len(intel))
		for _, entry := range intel {
			hints[entry.PlayerID] = entry.Hint
		}
		assert.Equal(t, map[string]string{"p5": HintEvil, "p6": HintEvil, "p7": HintEvil}, hints)
	})
}

func TestVisibleIntelChaosDecoy(t *testing.T) {
	// Given: a servant flagged as Merlin's decoy
	game := fixedRoleGame(t,
		entity.RoleMerlin, entity.RoleLoyalServant, entity.RoleLoyalServant,
		entity.RoleAssassin, entity.RoleMinion,
	)
	game.Config.WithChaosForMerlin = true
	game.DecoyID = "p2"

	t.Run("Merlin sees the decoy as evil", func(t *testing.T) {
		intel, err := VisibleIntel(game, "p1")
		require.NoError(t, err)

		hints := make(map[string]string, len(intel))
		for _, entry := range intel {
			hints[entry.PlayerID] = entry.Hint
		}
		assert.Equal(t, map[string]string{"p2": HintEvil, "p4": HintEvil, "p5": HintEvil}, hints)
	})

	t.Run("The decoy flag changes nobody else's view", func(t *testing.T) {
		intel, err := VisibleIntel(game, "p4")
		require.NoError(t, err)

		require.Len(t, intel, 1)
		assert.Equal(t, "p5", intel[0].PlayerID)
	})
}
