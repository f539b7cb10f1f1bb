package entity

import "strings"

// IdentityKind tells whether a party is bound to a registered user or only known by email
type IdentityKind int

const (
	Unregistered IdentityKind = iota
	Registered
)

// Identity identifies a signing party. A registered identity is compared by user id,
// an unregistered one by normalised email.
type Identity struct {
	kind  IdentityKind
	value string
}

func RegisteredIdentity(userID string) Identity {
	return Identity{kind: Registered, value: userID}
}

func UnregisteredIdentity(email string) Identity {
	return Identity{kind: Unregistered, value: NormalizeEmail(email)}
}

func (i Identity) Kind() IdentityKind { return i.kind }

func (i Identity) IsRegistered() bool { return i.kind == Registered && i.value != "" }

// UserID returns the user id of a registered identity, "" otherwise
func (i Identity) UserID() string {
	if i.kind == Registered {
		return i.value
	}
	return ""
}

// Email returns the email of an unregistered identity, "" otherwise
func (i Identity) Email() string {
	if i.kind == Unregistered {
		return i.value
	}
	return ""
}

func (i Identity) Equal(other Identity) bool {
	return i.kind == other.kind && i.value == other.value
}

func (i Identity) String() string {
	if i.kind == Registered {
		return "user:" + i.value
	}
	return "email:" + i.value
}

// Signer is the authenticated caller on whose behalf an operation runs
type Signer struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
