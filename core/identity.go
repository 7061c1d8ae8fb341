package core

import "time"

// Identity is the caller resolved for a single request. It is decoded from the
// credential token on every request and never persisted.
//
// The zero value is the anonymous identity.
type Identity struct {
	SubjectID string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Anonymous returns the identity attached to requests without a usable credential.
func Anonymous() *Identity {
	return &Identity{}
}

func (i *Identity) IsAnonymous() bool {
	return i == nil || i.SubjectID == ""
}

func (i *Identity) IsAdmin() bool {
	return !i.IsAnonymous() && i.Role == RoleAdmin
}

// IdentityFromUser builds the unsigned payload for a credential token.
// Timestamps are filled in when the token is minted.
func IdentityFromUser(u *User) Identity {
	identity := Identity{
		SubjectID: u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
	}
	if u.Avatar != nil {
		identity.Avatar = *u.Avatar
	}
	return identity
}
