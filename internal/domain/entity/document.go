package entity

import (
	"strings"
	"time"
)

// DocumentStatus is derived from the signing parties and never set directly
type DocumentStatus string

const (
	StatusPending         DocumentStatus = "Pending"
	StatusPartiallySigned DocumentStatus = "Partially Signed"
	StatusCompleted       DocumentStatus = "Completed"
)

// SigningParty is a person expected or entitled to sign a document
type SigningParty struct {
	Identity       Identity   `json:"-"`
	Email          string     `json:"email,omitempty"`
	Signed         bool       `json:"signed"`
	SignedAt       *time.Time `json:"signedAt,omitempty"`
	SignatureImage string     `json:"-"`
}

// UserID is a shortcut for the registered user id of the party, if any
func (p SigningParty) UserID() string {
	return p.Identity.UserID()
}

type Document struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	FileURL        string         `json:"fileUrl"`
	SignedFileURL  string         `json:"signedFileUrl,omitempty"`
	Filename       string         `json:"filename"`
	IsTemplate     bool           `json:"isTemplate"`
	OwnerID        string         `json:"ownerId"`
	OwnerEmail     string         `json:"ownerEmail"`
	SigningParties []SigningParty `json:"signingParties"`
	Version        int64          `json:"-"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// NewDocument creates a document with its owner enrolled as an already-signed party
func NewDocument(id, title, fileURL, filename string, isTemplate bool, owner Signer, signatureImage string, now time.Time) *Document {
	doc := &Document{
		ID:         id,
		Title:      strings.TrimSpace(title),
		FileURL:    fileURL,
		Filename:   filename,
		IsTemplate: isTemplate,
		OwnerID:    owner.UserID,
		OwnerEmail: NormalizeEmail(owner.Email),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	doc.RecordSignature(owner, signatureImage, now)
	return doc
}

// Status derives the document status from the party list
func (d *Document) Status() DocumentStatus {
	total := len(d.SigningParties)
	signed := d.SignedCount()

	switch {
	case signed == 0:
		return StatusPending
	case signed < total:
		return StatusPartiallySigned
	default:
		return StatusCompleted
	}
}

func (d *Document) SignedCount() int {
	count := 0
	for _, p := range d.SigningParties {
		if p.Signed {
			count++
		}
	}
	return count
}

// FileForSigning returns the authoritative file: the latest signed version if any,
// otherwise the original upload.
func (d *Document) FileForSigning() string {
	if d.SignedFileURL != "" {
		return d.SignedFileURL
	}
	return d.FileURL
}

// FindParty returns the index of the party with the given identity, or -1
func (d *Document) FindParty(userID, email string) int {
	email = NormalizeEmail(email)
	if userID != "" {
		for i, p := range d.SigningParties {
			if p.Identity.IsRegistered() && p.UserID() == userID {
				return i
			}
		}
	}
	if email != "" {
		for i, p := range d.SigningParties {
			if p.Email == email {
				return i
			}
		}
	}
	return -1
}

// AddParty appends an unsigned party unless one with the same resolved identity exists.
// It returns true when a party was added.
func (d *Document) AddParty(identity Identity, email string) bool {
	email = NormalizeEmail(email)
	if identity.Kind() == Unregistered && email == "" {
		email = identity.Email()
	}

	if d.FindParty(identity.UserID(), email) >= 0 {
		return false
	}

	d.SigningParties = append(d.SigningParties, SigningParty{
		Identity: identity,
		Email:    email,
	})
	return true
}

// RecordSignature marks the signer's party as signed, appending a new party when the
// signer was never invited. Re-signing overwrites the previous image and timestamp.
func (d *Document) RecordSignature(signer Signer, signatureImage string, now time.Time) {
	signedAt := now
	email := NormalizeEmail(signer.Email)

	identity := UnregisteredIdentity(email)
	if signer.UserID != "" {
		identity = RegisteredIdentity(signer.UserID)
	}

	if i := d.signerPartyIndex(signer.UserID, email); i >= 0 {
		party := &d.SigningParties[i]
		party.Identity = identity
		if email != "" {
			party.Email = email
		}
		party.Signed = true
		party.SignedAt = &signedAt
		party.SignatureImage = signatureImage
		return
	}

	d.SigningParties = append(d.SigningParties, SigningParty{
		Identity:       identity,
		Email:          email,
		Signed:         true,
		SignedAt:       &signedAt,
		SignatureImage: signatureImage,
	})
}

// signerPartyIndex finds the party a signer acts as: a registered party with the
// signer's user id first, else a not yet registered party with the signer's email.
func (d *Document) signerPartyIndex(userID, email string) int {
	if userID != "" {
		for i, p := range d.SigningParties {
			if p.Identity.IsRegistered() && p.UserID() == userID {
				return i
			}
		}
	}
	if email != "" {
		for i, p := range d.SigningParties {
			if !p.Identity.IsRegistered() && p.Email == email {
				return i
			}
		}
	}
	return -1
}

// SignedParties returns the parties that have signed, in party order
func (d *Document) SignedParties() []SigningParty {
	parties := make([]SigningParty, 0, len(d.SigningParties))
	for _, p := range d.SigningParties {
		if p.Signed {
			parties = append(parties, p)
		}
	}
	return parties
}
