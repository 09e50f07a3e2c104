package models

// Record is the flat storage representation of a user. It is the only
// place the credential crosses the entity boundary; everything else in
// the package hands out UserInfo instead.
type Record struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	IsDeleted    bool   `json:"isDeleted"`
	Credential   string `json:"credential"`
	WarningCount int    `json:"warningCount"`
	MutedUntil   int64  `json:"mutedUntil"`
}

// ToRecord flattens the user for persistence, credential included.
func ToRecord(u *User) Record {
	return Record{
		ID:           u.id,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.role),
		IsDeleted:    u.isDeleted,
		Credential:   u.credential,
		WarningCount: u.warningCount,
		MutedUntil:   u.mutedUntil,
	}
}

// FromRecord rebuilds a user from its stored form. The role tag picks the
// variant; an unknown or missing tag hydrates as a plain User rather than
// failing, so old or hand-edited records stay readable.
func FromRecord(rec Record) *User {
	return &User{
		Name:         rec.Name,
		Email:        rec.Email,
		id:           rec.ID,
		role:         ParseRole(rec.Role),
		isDeleted:    rec.IsDeleted,
		credential:   rec.Credential,
		warningCount: rec.WarningCount,
		mutedUntil:   rec.MutedUntil,
	}
}
