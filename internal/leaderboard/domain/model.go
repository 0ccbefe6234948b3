package domain

import "time"

// Entry is one ranked row. Derived, never stored: the board is
// recomputed from the user records on every change notification.
type Entry struct {
	Rank        int    `json:"rank"`
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	TotalPoints int    `json:"totalPoints"`
	LastUpdated int64  `json:"lastUpdated"`
	// You marks the row belonging to the requesting user.
	You bool `json:"you,omitempty"`
}

type Board struct {
	Entries     []Entry   `json:"entries"`
	TotalUsers  int64     `json:"totalUsers"`
	GeneratedAt time.Time `json:"generatedAt"`
}
