package domain

// Score is one leaderboard submission.
type Score struct {
	ID          string `json:"id"`
	Seed        string `json:"seed"`
	DayNumber   int    `json:"day_number"`
	PlayerName  string `json:"player_name"`
	Score       int    `json:"score"`
	SubmittedAt string `json:"submitted_at" format:"date-time"`
}

// DailySeed is a calendar day published to the leaderboard database. Day is
// 1-based: day 1 is calendar offset 0.
type DailySeed struct {
	Day        int    `json:"day"`
	Seed       string `json:"seed"`
	Theme      string `json:"theme"`
	EntryJSON  string `json:"entry_json"`
	DeployedAt string `json:"deployed_at" format:"date-time"`
}

type Event struct {
	ID          int64  `json:"id"`
	TS          string `json:"ts" format:"date-time"`
	Type        string `json:"type"`
	EntityKind  string `json:"entity_kind"`
	EntityID    string `json:"entity_id,omitempty"`
	ActorID     string `json:"actor_id"`
	PayloadJSON string `json:"payload_json"`
}
