package entities

import "time"

// Fund is the tenant-owned container investments belong to
type Fund struct {
	ID        string    `db:"id"`
	TeamID    string    `db:"team_id"`
	Name      string    `db:"name"`
	Currency  string    `db:"currency"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// OwnedBy reports whether the fund belongs to the given team
func (f *Fund) OwnedBy(teamID string) bool {
	return f != nil && teamID != "" && f.TeamID == teamID
}
