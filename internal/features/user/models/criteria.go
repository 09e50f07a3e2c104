package models

import "strings"

// Criteria описывает фильтр поиска пользователей. All set fields are
// ANDed; the zero value matches every record.
type Criteria struct {
	Q         string // substring, case-insensitive, against name OR email
	ID        string // exact
	Name      string // substring, case-insensitive
	Email     string // substring, case-insensitive
	Role      Role   // exact, empty means any
	IsDeleted *bool  // exact, nil means any
}

// IsEmpty reports whether no field is set, i.e. the criteria matches the
// whole directory.
func (c Criteria) IsEmpty() bool {
	return c.Q == "" && c.ID == "" && c.Name == "" && c.Email == "" &&
		c.Role == "" && c.IsDeleted == nil
}

// Matches applies the AND-filter to a single user.
func (c Criteria) Matches(u *User) bool {
	if c.ID != "" && u.ID() != c.ID {
		return false
	}
	if c.Q != "" {
		q := strings.ToLower(c.Q)
		if !strings.Contains(strings.ToLower(u.Name), q) &&
			!strings.Contains(strings.ToLower(u.Email), q) {
			return false
		}
	}
	if c.Name != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(c.Name)) {
		return false
	}
	if c.Email != "" && !strings.Contains(strings.ToLower(u.Email), strings.ToLower(c.Email)) {
		return false
	}
	if c.Role != "" && u.Role() != c.Role {
		return false
	}
	if c.IsDeleted != nil && u.IsDeleted() != *c.IsDeleted {
		return false
	}
	return true
}
