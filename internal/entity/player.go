package entity

const botNamePrefix = "bot:"

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	GameID string `json:"game_id,omitempty"`
	IsBot  bool   `json:"is_bot,omitempty"`
}

func NewBotPlayer(id, gameID, name string) *Player {
	return &Player{
		ID:     botNamePrefix + id,
		Name:   name,
		GameID: gameID,
		IsBot:  true,
	}
}
