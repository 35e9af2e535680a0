package models

// Member is an identity participating in a group.
// Members are referenced by ID from expenses, settlements and claims; they are
// never owned by those records.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// GroupID is the group this member belongs to.
	GroupID string

	// Name is the display name shown in the group.
	Name string

	// UserID links the member to a registered account.
	// Empty for guest members.
	UserID string

	// CreatedAt is the Unix timestamp when the member was added.
	CreatedAt int64
}

// IsGuest reports whether the member has no linked account.
func (m Member) IsGuest() bool {
	return m.UserID == ""
}
