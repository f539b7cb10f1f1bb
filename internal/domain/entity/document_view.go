package entity

import "time"

// DocumentView is the projection returned to clients for a single document
type DocumentView struct {
	ID            string          `json:"_id"`
	Title         string          `json:"title"`
	Status        DocumentStatus  `json:"status"`
	FileURL       string          `json:"fileUrl"`
	SignedFileURL *string         `json:"signedFileUrl"`
	Filename      string          `json:"filename"`
	IsTemplate    bool            `json:"isTemplate"`
	CreatedAt     time.Time       `json:"createdAt"`
	Owner         OwnerView       `json:"owner"`
	Parties       []PartyView     `json:"signingParties"`
	Signatures    []SignatureView `json:"signatures"`
}

type OwnerView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type PartyView struct {
	User     string     `json:"user,omitempty"`
	Email    string     `json:"email,omitempty"`
	Signed   bool       `json:"signed"`
	SignedAt *time.Time `json:"signedAt"`
}

type SignatureView struct {
	User     string     `json:"user,omitempty"`
	Email    string     `json:"email,omitempty"`
	SignedAt *time.Time `json:"signedAt"`
}

// NewDocumentView builds the client projection; status and signatures are derived
func NewDocumentView(d *Document) *DocumentView {
	view := &DocumentView{
		ID:         d.ID,
		Title:      d.Title,
		Status:     d.Status(),
		FileURL:    d.FileURL,
		Filename:   d.Filename,
		IsTemplate: d.IsTemplate,
		CreatedAt:  d.CreatedAt,
		Owner: OwnerView{
			ID:    d.OwnerID,
			Email: d.OwnerEmail,
		},
		Parties:    make([]PartyView, 0, len(d.SigningParties)),
		Signatures: make([]SignatureView, 0, len(d.SigningParties)),
	}
	if view.Filename == "" {
		view.Filename = "document.pdf"
	}
	if d.SignedFileURL != "" {
		signed := d.SignedFileURL
		view.SignedFileURL = &signed
	}

	for _, p := range d.SigningParties {
		view.Parties = append(view.Parties, PartyView{
			User:     p.UserID(),
			Email:    p.Email,
			Signed:   p.Signed,
			SignedAt: p.SignedAt,
		})
		if p.Signed {
			view.Signatures = append(view.Signatures, SignatureView{
				User:     p.UserID(),
				Email:    p.Email,
				SignedAt: p.SignedAt,
			})
		}
	}

	return view
}
