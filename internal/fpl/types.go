package fpl

// Pick is one squad slot from the entry picks endpoint.
// Position here is the slot number (1-15), not the playing position —
// the pipeline derives the playing position from the reference table.
type Pick struct {
	Element       int  `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
}

// HistoryEntry is one scored gameweek from the element summary endpoint.
type HistoryEntry struct {
	Element      int    `json:"element"`
	Round        int    `json:"round"`
	OpponentTeam int    `json:"opponent_team"`
	WasHome      bool   `json:"was_home"`
	TotalPoints  int    `json:"total_points"`
	Minutes      int    `json:"minutes"`
	GoalsScored  int    `json:"goals_scored"`
	Assists      int    `json:"assists"`
	Bonus        int    `json:"bonus"`
	Value        int    `json:"value"`
	KickoffTime  string `json:"kickoff_time"`
}
