package model

type GameStatus string

const (
	GameOpen      GameStatus = "OPEN"
	GameCreating  GameStatus = "CREATING"
	GameWaiting   GameStatus = "WAITING"
	GameResolving GameStatus = "RESOLVING"
	GameCompleted GameStatus = "COMPLETED"
)
