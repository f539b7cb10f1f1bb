package entity

import "time"

type EventKind string

const (
	EventCreated   EventKind = "created"
	EventInvited   EventKind = "invited"
	EventSigned    EventKind = "signed"
	EventAnnotated EventKind = "annotated"
)

// DocumentEvent is an entry of a document's history
type DocumentEvent struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"documentId"`
	Kind       EventKind `json:"kind"`
	Actor      string    `json:"actor"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
