package core

import "time"

const (
	ProviderCredential = "credential"
	ProviderGoogle     = "google"
)

// Account represents an authentication method
//
// This is the "credential" - how someone proves who they are
type Account struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ProviderID string    `json:"providerId"` // "credential", "google"
	AccountID  string    `json:"accountId"`
	Password   *string   `json:"-"` // Never expose in JSON
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
