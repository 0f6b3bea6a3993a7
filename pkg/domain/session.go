package domain

import "time"

// Session is a persisted editing workspace.
// Selected is presentation state and never part of the graph itself.
type Session struct {
	ID        string        `json:"id"`
	Graph     GraphDocument `json:"graph"`
	Selected  string        `json:"selected,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	out := *s
	out.Graph = s.Graph.Clone()
	return &out
}
