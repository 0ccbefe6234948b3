package domain

// Entry types for the points history. "bonus" is reserved for
// promotional credits; the scan flow only ever writes "earned".
const (
	EntryTypeEarned = "earned"
	EntryTypeBonus  = "bonus"
)

// UserRecord mirrors the per-user node of the real-time store:
// users:{uid} plus the derived running total maintained by the ledger.
type UserRecord struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	TotalPoints int    `json:"totalPoints"`
	LastUpdated int64  `json:"lastUpdated"` // ms since epoch
	CreatedAt   int64  `json:"createdAt"`   // ms since epoch
}

// HistoryEntry is one point-earning event. Entries are immutable once
// written; the ledger only ever appends.
type HistoryEntry struct {
	ID        string `json:"id"`
	Points    int    `json:"points"`
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"` // ms since epoch
	Type      string `json:"type"`
}

// AddResult is what an AddPoints call reports back to the caller.
// TotalPoints/SessionPoints are the values after the write so the
// client can render its "+N" animation without a follow-up read.
type AddResult struct {
	Entry         HistoryEntry `json:"entry"`
	TotalPoints   int          `json:"totalPoints"`
	SessionPoints int          `json:"sessionPoints"`
	// Fallback is set when the remote store was unreachable and the
	// update went to the local device record instead.
	Fallback bool `json:"fallback"`
}
