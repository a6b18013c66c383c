package service

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/avalon-backend/internal/avalon"
	"github.com/rocketscienceinc/avalon-backend/internal/entity"
)

var ErrNoEligibleTarget = errors.New("no eligible target for bot")

// BotService plays for automated stand-ins. Act applies at most one
// pending bot action through the same rules path as a human action and
// reports whether it acted; callers loop until the bots are done.
type BotService interface {
	Act(game *entity.Game) (bool, error)
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

func (that *botService) Act(game *entity.Game) (bool, error) {
	switch game.Phase {
	case entity.PhaseRoleReveal:
		return that.acknowledge(game)
	case entity.PhaseTeamBuilding:
		return that.proposeTeam(game)
	case entity.PhaseVoting:
		return that.castTeamVote(game)
	case entity.PhaseMission:
		return that.castMissionVote(game)
	case entity.PhaseLadyOfLake:
		return that.examine(game)
	case entity.PhaseAssassin:
		return that.assassinate(game)
	default:
		// lobby, transition and game over wait on humans
		return false, nil
	}
}

func (that *botService) acknowledge(game *entity.Game) (bool, error) {
	for _, player := range game.Players {
		if !player.IsBot || game.Acknowledged[player.ID] {
			continue
		}

		if err := avalon.AcknowledgeRole(game, player.ID); err != nil {
			return false, fmt.Errorf("bot failed to acknowledge role: %w", err)
		}

		return true, nil
	}

	return false, nil
}

func (that *botService) proposeTeam(game *entity.Game) (bool, error) {
	leader := game.Leader()
	if leader == nil || !leader.IsBot {
		return false, nil
	}

	setup, err := game.CurrentMissionSetup()
	if err != nil {
		return false, err
	}

	// random team that always includes the leader
	team := []string{leader.ID}
	rest := make([]string, 0, len(game.Players)-1)
	for _, player := range game.Players {
		if player.ID != leader.ID {
			rest = append(rest, player.ID)
		}
	}
	rand.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
	team = append(team, rest[:setup.TeamSize-1]...)

	if err := avalon.ProposeTeam(game, leader.ID, team); err != nil {
		return false, fmt.Errorf("bot failed to propose team: %w", err)
	}

	return true, nil
}

func (that *botService) castTeamVote(game *entity.Game) (bool, error) {
	for _, player := range game.Players {
		if !player.IsBot {
			continue
		}
		if _, voted := game.TeamVotes[player.ID]; voted {
			continue
		}

		if err := avalon.CastTeamVote(game, player.ID, rand.Intn(2) == 0); err != nil {
			return false, fmt.Errorf("bot failed to vote on team: %w", err)
		}

		return true, nil
	}

	return false, nil
}

func (that *botService) castMissionVote(game *entity.Game) (bool, error) {
	for _, memberID := range game.ProposedTeam {
		player := game.PlayerByID(memberID)
		if player == nil || !player.IsBot {
			continue
		}
		if _, voted := game.MissionVotes[memberID]; voted {
			continue
		}

		role, err := game.RoleOf(memberID)
		if err != nil {
			return false, err
		}

		// good bots must play success; evil bots flip a coin
		success := role.IsGood() || rand.Intn(2) == 0

		if err := avalon.CastMissionVote(game, memberID, success); err != nil {
			return false, fmt.Errorf("bot failed to vote on mission: %w", err)
		}

		return true, nil
	}

	return false, nil
}

func (that *botService) examine(game *entity.Game) (bool, error) {
	if game.Lady == nil {
		return false, nil
	}

	holder := game.PlayerByID(game.Lady.Holder)
	if holder == nil || !holder.IsBot {
		return false, nil
	}

	targetID, err := that.pickLadyTarget(game)
	if err != nil {
		return false, err
	}

	if _, err := avalon.ExamineLoyalty(game, holder.ID, targetID); err != nil {
		return false, fmt.Errorf("bot failed to examine loyalty: %w", err)
	}

	return true, nil
}

func (that *botService) pickLadyTarget(game *entity.Game) (string, error) {
	eligible := make([]string, 0, len(game.Players))

	for _, player := range game.Players {
		if player.ID == game.Lady.Holder {
			continue
		}

		used := false
		for _, pastID := range game.Lady.PastHolders {
			if pastID == player.ID {
				used = true
				break
			}
		}
		if !used {
			eligible = append(eligible, player.ID)
		}
	}

	if len(eligible) == 0 {
		return "", ErrNoEligibleTarget
	}

	return eligible[rand.Intn(len(eligible))], nil
}

func (that *botService) assassinate(game *entity.Game) (bool, error) {
	assassinID := game.PlayerWithRole(entity.RoleAssassin)

	assassin := game.PlayerByID(assassinID)
	if assassin == nil || !assassin.IsBot {
		return false, nil
	}

	// the bot only rules out players it legitimately knows to be evil
	intel, err := avalon.VisibleIntel(game, assassinID)
	if err != nil {
		return false, err
	}

	known := make(map[string]bool, len(intel))
	for _, entry := range intel {
		known[entry.PlayerID] = true
	}

	candidates := make([]string, 0, len(game.Players))
	for _, player := range game.Players {
		if player.ID != assassinID && !known[player.ID] {
			candidates = append(candidates, player.ID)
		}
	}

	if len(candidates) == 0 {
		return false, ErrNoEligibleTarget
	}

	targetID := candidates[rand.Intn(len(candidates))]

	if _, err := avalon.Assassinate(game, assassinID, targetID); err != nil {
		return false, fmt.Errorf("bot failed to assassinate: %w", err)
	}

	return true, nil
}
