package model

import "time"

// Match keeps the ordered pair invariant UserAID < UserBID.
type Match struct {
	ID        int64
	UserAID   int64
	UserBID   int64
	CreatedAt time.Time
}

func (m Match) Other(userID int64) int64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}
