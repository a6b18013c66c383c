package usecase

import (
	"github.com/rocketscienceinc/avalon-backend/internal/avalon"
	"github.com/rocketscienceinc/avalon-backend/internal/entity"
)

// PublicState is the snapshot every participant may see. It never
// carries role assignments, vote attribution mid-vote, or examined
// alignments.
type PublicState struct {
	GameID string            `json:"game_id"`
	Phase  string            `json:"phase"`
	Config entity.GameConfig `json:"config"`

	Players []PlayerSummary `json:"players"`
	Leader  string          `json:"leader,omitempty"`

	MissionIndex      int      `json:"mission_index"`
	MissionResults    []string `json:"mission_results,omitempty"`
	MissionFailCounts []int    `json:"mission_fail_counts,omitempty"`
	RejectedTeams     int      `json:"rejected_teams"`

	ProposedTeam []string `json:"proposed_team,omitempty"`

	TeamVotesCast int `json:"team_votes_cast,omitempty"`
	// TeamVotes is revealed simultaneously once the last ballot is in.
	TeamVotes        map[string]string `json:"team_votes,omitempty"`
	MissionVotesCast int               `json:"mission_votes_cast,omitempty"`

	Lady    *LadyPublic     `json:"lady,omitempty"`
	Outcome *entity.Outcome `json:"outcome,omitempty"`
}

type PlayerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	IsBot bool   `json:"is_bot,omitempty"`
}

// LadyPublic exposes token custody without examined alignments.
type LadyPublic struct {
	Holder        string   `json:"holder"`
	PastHolders   []string `json:"past_holders,omitempty"`
	UsesRemaining int      `json:"uses_remaining"`
}

// PrivateView is scoped to one player and must never be forwarded to
// anyone else.
type PrivateView struct {
	PlayerID  string           `json:"player_id"`
	Role      entity.Role      `json:"role"`
	Alignment entity.Alignment `json:"alignment"`
	Intel     []avalon.Intel   `json:"intel,omitempty"`
}

// BuildPublicState projects the game onto what everyone is allowed to
// know.
func BuildPublicState(game *entity.Game) *PublicState {
	state := &PublicState{
		GameID: game.ID,
		Phase:  game.Phase,
		Config: game.Config,

		MissionIndex:      game.MissionIndex,
		MissionResults:    game.MissionResults,
		MissionFailCounts: game.MissionFailCounts,
		RejectedTeams:     game.RejectedTeams,

		ProposedTeam: game.ProposedTeam,
		Outcome:      game.Outcome,
	}

	for _, player := range game.Players {
		state.Players = append(state.Players, PlayerSummary{
			ID:    player.ID,
			Name:  player.Name,
			IsBot: player.IsBot,
		})
	}

	if leader := game.Leader(); leader != nil && !game.IsLobby() {
		state.Leader = leader.ID
	}

	// ballots stay secret until the proposal resolves
	if game.Phase == entity.PhaseVoting {
		state.TeamVotesCast = len(game.TeamVotes)
	} else {
		state.TeamVotes = game.TeamVotes
	}

	if game.Phase == entity.PhaseMission {
		state.MissionVotesCast = len(game.MissionVotes)
	}

	if game.Lady != nil {
		state.Lady = &LadyPublic{
			Holder:        game.Lady.Holder,
			PastHolders:   game.Lady.PastHolders,
			UsesRemaining: game.Lady.UsesRemaining,
		}
	}

	return state
}

// BuildPrivateView assembles one player's own role and visible-intel
// set. Before roles are dealt it returns nil.
func BuildPrivateView(game *entity.Game, playerID string) (*PrivateView, error) {
	if game.IsLobby() || game.Roles == nil {
		return nil, nil
	}

	role, err := game.RoleOf(playerID)
	if err != nil {
		return nil, err
	}

	intel, err := avalon.VisibleIntel(game, playerID)
	if err != nil {
		return nil, err
	}

	return &PrivateView{
		PlayerID:  playerID,
		Role:      role,
		Alignment: role.Alignment(),
		Intel:     intel,
	}, nil
}
