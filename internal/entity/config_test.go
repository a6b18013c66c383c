package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/avalon-backend/internal/apperror"
)

func TestGameConfigValidate(t *testing.T) {
	t.Run("Accepts a plain 5 player game", func(t *testing.T) {
		// Given: the smallest supported roster with no options
		config := GameConfig{PlayerCount: 5}

		// Then: the config is valid
		require.NoError(t, config.Validate())
	})

	t.Run("Rejects player counts outside the supported range", func(t *testing.T) {
		for _, playerCount := range []int{0, 4, 11} {
			config := GameConfig{PlayerCount: playerCount}

			err := config.Validate()
			require.Error(t, err, "playerCount=%d", playerCount)
			assert.ErrorIs(t, err, apperror.ErrConfigurationInvalid)
		}
	})

	t.Run("Rejects optional evil roles that crowd out the Assassin", func(t *testing.T) {
		// Given: 5 players leave one evil slot beside the Assassin
		config := GameConfig{PlayerCount: 5, WithMorgana: true, WithMordred: true}

		// When: validating
		err := config.Validate()

		// Then: two optional evil roles do not fit the quota of two
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrConfigurationInvalid)
	})

	t.Run("Accepts a full 10 player setup with every option", func(t *testing.T) {
		config := GameConfig{
			PlayerCount:        10,
			WithPercival:       true,
			WithMorgana:        true,
			WithMordred:        true,
			WithOberon:         true,
			WithLadyOfLake:     true,
			WithChaosForMerlin: true,
		}

		require.NoError(t, config.Validate())
		assert.Equal(t, 3, config.OptionalEvilCount())
	})
}
