package models

import (
	"time"

	"github.com/google/uuid"
)

// User представляет полную модель пользователя в системе.
//
// Identity and moderation state live in unexported fields: id and role are
// fixed at construction, isDeleted only ever goes false->true, and the
// credential is reachable only through CheckCredential and the storage
// codec. Name and Email are plain display identity and freely mutable.
type User struct {
	Name  string
	Email string

	id           string
	role         Role
	isDeleted    bool
	credential   string
	warningCount int
	mutedUntil   int64 // unix millis, zero means not muted
}

// NewUser creates a user with a fresh id, zero warnings, not muted, not
// deleted.
func NewUser(name, email, credential string, role Role) *User {
	return &User{
		Name:       name,
		Email:      email,
		id:         uuid.New().String(),
		role:       role,
		credential: credential,
	}
}

func (u *User) ID() string      { return u.id }
func (u *User) Role() Role      { return u.role }
func (u *User) IsDeleted() bool { return u.isDeleted }
func (u *User) Warnings() int   { return u.warningCount }

// CheckCredential reports whether input matches the stored credential.
// Who is allowed to ask is the caller's concern, not this method's.
func (u *User) CheckCredential(input string) bool {
	return u.credential == input
}

// ResetCredential overwrites the credential if the acting user carries
// admin capability. The check lives here, on the target's mutation
// entrypoint, and is evaluated against the acting role at call time.
func (u *User) ResetCredential(acting *User, newValue string) bool {
	if acting == nil || !HasAdminCapability(acting.role) {
		return false
	}
	u.credential = newValue
	return true
}

// AddWarning increments the warning count and returns the new total.
func (u *User) AddWarning() int {
	u.warningCount++
	return u.warningCount
}

// Mute sets the mute deadline to now+d (negative d counts as zero) and
// returns the deadline in unix milliseconds.
func (u *User) Mute(d time.Duration) int64 {
	if d < 0 {
		d = 0
	}
	u.mutedUntil = time.Now().Add(d).UnixMilli()
	return u.mutedUntil
}

// IsMuted reports whether the user is muted at the given instant. Mute
// state is always re-derived from the deadline, never cached.
func (u *User) IsMuted(now time.Time) bool {
	return now.UnixMilli() < u.mutedUntil
}

// MuteRemaining returns how long the mute still lasts at the given
// instant, or zero when not muted.
func (u *User) MuteRemaining(now time.Time) time.Duration {
	remaining := u.mutedUntil - now.UnixMilli()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(remaining) * time.Millisecond
}

// SoftDelete marks the user deleted and reports whether this call made
// the transition. Repeat calls are no-ops reported as false.
func (u *User) SoftDelete() bool {
	if u.isDeleted {
		return false
	}
	u.isDeleted = true
	return true
}

// UserInfo представляет публичную информацию о пользователе
type UserInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	IsDeleted bool   `json:"isDeleted"`
	Warnings  int    `json:"warnings"`
}

// Info returns the credential-free public view of the user.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:        u.id,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.role,
		IsDeleted: u.isDeleted,
		Warnings:  u.warningCount,
	}
}
