package models

// Game identifies which trading card game a card belongs to.
// An empty value means the game could not be determined.
type Game string

const (
	GamePokemon  Game = "pokemon"
	GameOnePiece Game = "onepiece"
	GameMTG      Game = "mtg"
	GameYuGiOh   Game = "yugioh"
)
