package entity

// AnnotateSignatureRequest places a signature image on a page. Either X and Y
// (PDF points) or Click (preview canvas position) must be given.
type AnnotateSignatureRequest struct {
	DocumentID      string        `json:"documentId"`
	X               *float64      `json:"x"`
	Y               *float64      `json:"y"`
	Page            *int          `json:"page"`
	SignatureCanvas string        `json:"signatureCanvas"`
	Click           *ClickRequest `json:"click,omitempty"`
}

// ClickRequest is a click on the rendered page preview
type ClickRequest struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	OriginX      float64 `json:"originX"`
	OriginY      float64 `json:"originY"`
	CanvasHeight float64 `json:"canvasHeight"`
}

type AnnotateSignatureResponse struct {
	SignedURL string `json:"signedUrl"`
}

type SignDocumentRequest struct {
	DocumentID      string `json:"documentId"`
	SignatureCanvas string `json:"signatureCanvas"`
}

// ShareDocumentRequest keeps the legacy "reciever" spelling used by the web client
type ShareDocumentRequest struct {
	DocumentID     string   `json:"documentId"`
	RecieverEmail  string   `json:"recieverEmail"`
	RecieverEmails []string `json:"recieverEmails"`
}

// Recipients merges the single and list forms
func (r *ShareDocumentRequest) Recipients() []string {
	emails := make([]string, 0, len(r.RecieverEmails)+1)
	if r.RecieverEmail != "" {
		emails = append(emails, r.RecieverEmail)
	}
	return append(emails, r.RecieverEmails...)
}
