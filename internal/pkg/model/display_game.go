package model

type DisplayGame struct {
	Id        uint64     `json:"id"`
	Status    GameStatus `json:"status"`
	Details   *Game      `json:"details,omitempty"`
	IsCreator bool       `json:"isCreator"`
	IsJoined  bool       `json:"isJoined"`
	CanJoin   bool       `json:"canJoin"`
	ImageUrl  string     `json:"imageUrl,omitempty"`
}

// Lobby is everything a player sees on the coin-flip screen.
type Lobby struct {
	Player           string        `json:"player"`
	Games            []DisplayGame `json:"games"`
	Resolving        []uint64      `json:"resolving"`
	UnresolvedCount  int           `json:"unresolvedCount"`
	JoiningGameId    *uint64       `json:"joiningGameId,omitempty"`
	OpenGamesError   string        `json:"openGamesError,omitempty"`
	HistoryError     string        `json:"historyError,omitempty"`
	CreateGameStatus string        `json:"createGameStatus,omitempty"`
	CreateGameError  string        `json:"createGameError,omitempty"`
	JoinGameStatus   string        `json:"joinGameStatus,omitempty"`
	JoinGameError    string        `json:"joinGameError,omitempty"`
}
