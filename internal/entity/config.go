package entity

import (
	"fmt"

	"github.com/rocketscienceinc/avalon-backend/internal/apperror"
)

// GameConfig is supplied once at game creation and is immutable for the
// game's duration.
type GameConfig struct {
	PlayerCount int `json:"player_count"`

	WithPercival bool `json:"with_percival,omitempty"`
	WithMorgana  bool `json:"with_morgana,omitempty"`
	WithMordred  bool `json:"with_mordred,omitempty"`
	WithOberon   bool `json:"with_oberon,omitempty"`

	WithLadyOfLake     bool `json:"with_lady_of_lake,omitempty"`
	WithChaosForMerlin bool `json:"with_chaos_for_merlin,omitempty"`
}

// OptionalEvilCount returns how many evil slots the enabled optional
// roles consume on top of the mandatory Assassin.
func (that *GameConfig) OptionalEvilCount() int {
	count := 0
	if that.WithMorgana {
		count++
	}
	if that.WithMordred {
		count++
	}
	if that.WithOberon {
		count++
	}

	return count
}

// Validate checks the player count and that the enabled optional evil
// roles fit inside the evil quota, Assassin always taking one slot.
func (that *GameConfig) Validate() error {
	if that.PlayerCount < MinPlayers || that.PlayerCount > MaxPlayers {
		return fmt.Errorf("%w: player count %d not in [%d, %d]", apperror.ErrConfigurationInvalid, that.PlayerCount, MinPlayers, MaxPlayers)
	}

	quota, err := EvilQuota(that.PlayerCount)
	if err != nil {
		return err
	}

	if that.OptionalEvilCount() > quota-1 {
		return fmt.Errorf("%w: %d optional evil roles exceed quota %d", apperror.ErrConfigurationInvalid, that.OptionalEvilCount(), quota)
	}

	return nil
}
