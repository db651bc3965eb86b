package storage

import "time"

type Storage struct {
	basePath string
	key      []byte
}

// StoredAccount is one saved Instagram business account. The token only
// ever touches disk encrypted.
type StoredAccount struct {
	AccessToken       string    `json:"access_token"`
	BusinessAccountID string    `json:"business_account_id"`
	AddedAt           time.Time `json:"added_at"`
}

type accountsFile struct {
	Default  string                    `json:"default,omitempty"`
	Accounts map[string]*StoredAccount `json:"accounts"`
}
