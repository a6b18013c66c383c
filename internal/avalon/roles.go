package avalon

import (
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/avalon-backend/internal/apperror"
	"github.com/rocketscienceinc/avalon-backend/internal/entity"
)

const (
	HintEvil            = "evil"
	HintMerlinCandidate = "merlin_candidate"
)

// Intel is one entry of a player's visible-intel set: another player and
// what the viewer is entitled to know about them.
type Intel struct {
	PlayerID string `json:"player_id"`
	Hint     string `json:"hint"`
}

// AssignRoles builds the role multiset for the game's configuration,
// shuffles it with an unbiased shuffle and assigns one role per player in
// seating order. Roles are fixed for the rest of the game.
func AssignRoles(game *entity.Game) error {
	if err := game.Config.Validate(); err != nil {
		return err
	}

	if len(game.Players) != game.Config.PlayerCount {
		return fmt.Errorf("%w: roster has %d players, config wants %d", apperror.ErrConfigurationInvalid, len(game.Players), game.Config.PlayerCount)
	}

	pool, err := buildRolePool(&game.Config)
	if err != nil {
		return err
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	game.Roles = make(map[string]entity.Role, len(pool))
	for i, player := range game.Players {
		game.Roles[player.ID] = pool[i]
	}

	if game.Config.WithChaosForMerlin {
		game.DecoyID = pickMerlinDecoy(game)
	}

	return nil
}

// buildRolePool returns the exact role multiset for the configuration:
// Merlin and Assassin always, optional roles as enabled, the rest padded
// with loyal servants and minions up to the good/evil quotas.
func buildRolePool(config *entity.GameConfig) ([]entity.Role, error) {
	evilCount, err := entity.EvilQuota(config.PlayerCount)
	if err != nil {
		return nil, err
	}
	goodCount := config.PlayerCount - evilCount

	good := []entity.Role{entity.RoleMerlin}
	if config.WithPercival {
		good = append(good, entity.RolePercival)
	}
	for len(good) < goodCount {
		good = append(good, entity.RoleLoyalServant)
	}

	evil := []entity.Role{entity.RoleAssassin}
	if config.WithMorgana {
		evil = append(evil, entity.RoleMorgana)
	}
	if config.WithMordred {
		evil = append(evil, entity.RoleMordred)
	}
	if config.WithOberon {
		evil = append(evil, entity.RoleOberon)
	}
	for len(evil) < evilCount {
		evil = append(evil, entity.RoleMinion)
	}

	if len(good) != goodCount || len(evil) != evilCount {
		return nil, fmt.Errorf("%w: role pool %d good / %d evil does not fit quota %d/%d",
			apperror.ErrConfigurationInvalid, len(good), len(evil), goodCount, evilCount)
	}

	return append(good, evil...), nil
}

// pickMerlinDecoy selects a random good, non-Merlin player to be shown to
// Merlin as a fake evil. It never alters real visibility or win logic.
func pickMerlinDecoy(game *entity.Game) string {
	candidates := make([]string, 0, len(game.Players))
	for _, player := range game.Players {
		role := game.Roles[player.ID]
		if role.IsGood() && role != entity.RoleMerlin {
			candidates = append(candidates, player.ID)
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	return candidates[rand.Intn(len(candidates))]
}

// VisibleIntel derives the viewer's visible-intel set from the rulebook
// table. Merlin sees evil except Mordred (plus the chaos decoy, shown
// identically); Percival sees Merlin and Morgana as ambiguous candidates;
// evil players except Oberon see each other except Oberon.
func VisibleIntel(game *entity.Game, viewerID string) ([]Intel, error) {
	role, err := game.RoleOf(viewerID)
	if err != nil {
		return nil, err
	}

	var intel []Intel

	for _, player := range game.Players {
		if player.ID == viewerID {
			continue
		}

		other := game.Roles[player.ID]

		switch role {
		case entity.RoleMerlin:
			if other.IsEvil() && other != entity.RoleMordred {
				intel = append(intel, Intel{PlayerID: player.ID, Hint: HintEvil})
			} else if player.ID == game.DecoyID {
				intel = append(intel, Intel{PlayerID: player.ID, Hint: HintEvil})
			}
		case entity.RolePercival:
			if other == entity.RoleMerlin || other == entity.RoleMorgana {
				intel = append(intel, Intel{PlayerID: player.ID, Hint: HintMerlinCandidate})
			}
		case entity.RoleMorgana, entity.RoleAssassin, entity.RoleMordred, entity.RoleMinion:
			if other.IsEvil() && other != entity.RoleOberon {
				intel = append(intel, Intel{PlayerID: player.ID, Hint: HintEvil})
			}
		case entity.RoleOberon, entity.RoleLoyalServant:
			// sees nobody
		}
	}

	return intel, nil
}
