package entity

import "time"

// SignatureAsset is a reusable signature image saved by a user.
// The most recent one is the user's current signature.
type SignatureAsset struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	SignURL   string    `json:"signUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// SaveSignatureRequest represents the request to save a signature asset
type SaveSignatureRequest struct {
	SignURL string `json:"signUrl"`
}
