package entity

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testNow = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

func newTestDocument() *Document {
	owner := Signer{UserID: "u-owner", Email: "Owner@Example.com"}
	return NewDocument("doc-1", " Contract ", "https://store/doc.pdf", "doc.pdf", false, owner, "data:image/png;base64,AAA", testNow)
}

func TestNewDocumentEnrollsOwnerAsSigned(t *testing.T) {
	doc := newTestDocument()

	if len(doc.SigningParties) != 1 {
		t.Fatalf("expected 1 party, got %d", len(doc.SigningParties))
	}
	owner := doc.SigningParties[0]
	if !owner.Signed || owner.SignedAt == nil {
		t.Errorf("owner party should be signed: %+v", owner)
	}
	if owner.UserID() != "u-owner" || owner.Email != "owner@example.com" {
		t.Errorf("unexpected owner identity: %s %q", owner.Identity, owner.Email)
	}
	if doc.Title != "Contract" {
		t.Errorf("title not trimmed: %q", doc.Title)
	}
	if got := doc.Status(); got != StatusCompleted {
		t.Errorf("single-party document with owner signature: got %q, want %q", got, StatusCompleted)
	}
	if doc.SignedFileURL != "" {
		t.Errorf("signed file should be unset on creation")
	}
}

func TestStatusDerivation(t *testing.T) {
	signedAt := testNow
	tests := []struct {
		name    string
		parties []SigningParty
		want    DocumentStatus
	}{
		{"no parties", nil, StatusPending},
		{"none signed", []SigningParty{{Email: "a@x.io"}, {Email: "b@x.io"}}, StatusPending},
		{"one of two", []SigningParty{{Email: "a@x.io", Signed: true, SignedAt: &signedAt}, {Email: "b@x.io"}}, StatusPartiallySigned},
		{"all signed", []SigningParty{{Email: "a@x.io", Signed: true}, {Email: "b@x.io", Signed: true}}, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{SigningParties: tt.parties}
			if got := doc.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTwoPartyScenario(t *testing.T) {
	doc := newTestDocument()

	if !doc.AddParty(UnregisteredIdentity("guest@example.com"), "guest@example.com") {
		t.Fatal("expected party to be added")
	}
	if got := doc.Status(); got != StatusPartiallySigned {
		t.Fatalf("after invite: got %q, want %q", got, StatusPartiallySigned)
	}

	doc.RecordSignature(Signer{UserID: "u-guest", Email: "GUEST@example.com"}, "data:image/png;base64,BBB", testNow.Add(time.Hour))

	if got := doc.Status(); got != StatusCompleted {
		t.Fatalf("after second signature: got %q, want %q", got, StatusCompleted)
	}
	if len(doc.SigningParties) != 2 {
		t.Fatalf("expected 2 parties, got %d", len(doc.SigningParties))
	}
	guest := doc.SigningParties[1]
	if !guest.Identity.Equal(RegisteredIdentity("u-guest")) {
		t.Errorf("guest party should become registered, got %s", guest.Identity)
	}
}

func TestAddPartyDeduplicates(t *testing.T) {
	doc := newTestDocument()

	if !doc.AddParty(UnregisteredIdentity("a@example.com"), "a@example.com") {
		t.Fatal("first add should succeed")
	}
	if doc.AddParty(UnregisteredIdentity("A@Example.com "), "A@Example.com ") {
		t.Error("second add with same email should be a no-op")
	}
	if doc.AddParty(RegisteredIdentity("u-owner"), "other@example.com") {
		t.Error("add with existing user id should be a no-op")
	}
	if doc.AddParty(RegisteredIdentity("u-new"), "owner@example.com") {
		t.Error("add with existing email should be a no-op")
	}
	if len(doc.SigningParties) != 2 {
		t.Errorf("expected 2 parties, got %d", len(doc.SigningParties))
	}
}

func TestAddPartyReopensCompletedDocument(t *testing.T) {
	doc := newTestDocument()
	if doc.Status() != StatusCompleted {
		t.Fatalf("precondition: %q", doc.Status())
	}

	doc.AddParty(UnregisteredIdentity("late@example.com"), "late@example.com")

	if got := doc.Status(); got != StatusPartiallySigned {
		t.Errorf("got %q, want %q", got, StatusPartiallySigned)
	}
}

func TestRecordSignatureIsIdempotentPerSigner(t *testing.T) {
	doc := newTestDocument()
	doc.AddParty(UnregisteredIdentity("b@example.com"), "b@example.com")
	signer := Signer{UserID: "u-b", Email: "b@example.com"}

	doc.RecordSignature(signer, "data:image/png;base64,first", testNow)
	doc.RecordSignature(signer, "data:image/png;base64,second", testNow.Add(time.Minute))

	count := 0
	for _, p := range doc.SigningParties {
		if p.UserID() == "u-b" {
			count++
			if p.SignatureImage != "data:image/png;base64,second" {
				t.Errorf("image not updated: %q", p.SignatureImage)
			}
			if !p.SignedAt.Equal(testNow.Add(time.Minute)) {
				t.Errorf("signedAt not updated: %v", p.SignedAt)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one party for signer, got %d", count)
	}
}

func TestRecordSignatureAppendsUninvitedSigner(t *testing.T) {
	doc := newTestDocument()
	doc.AddParty(UnregisteredIdentity("invited@example.com"), "invited@example.com")

	doc.RecordSignature(Signer{UserID: "u-walkin", Email: "walkin@example.com"}, "img", testNow)

	if len(doc.SigningParties) != 3 {
		t.Fatalf("expected 3 parties, got %d", len(doc.SigningParties))
	}
	if got := doc.Status(); got != StatusPartiallySigned {
		t.Errorf("got %q, want %q", got, StatusPartiallySigned)
	}
}

func TestRecordSignaturePrefersUserIDOverEmail(t *testing.T) {
	doc := &Document{}
	doc.AddParty(UnregisteredIdentity("shared@example.com"), "shared@example.com")
	doc.SigningParties = append(doc.SigningParties, SigningParty{Identity: RegisteredIdentity("u-1"), Email: "u1@example.com"})

	doc.RecordSignature(Signer{UserID: "u-1", Email: "shared@example.com"}, "img", testNow)

	if doc.SigningParties[0].Signed {
		t.Error("email-only party should not be signed when a user id match exists")
	}
	if !doc.SigningParties[1].Signed {
		t.Error("registered party should be signed")
	}
}

func TestNewDocumentView(t *testing.T) {
	doc := newTestDocument()
	doc.AddParty(UnregisteredIdentity("b@example.com"), "b@example.com")

	view := NewDocumentView(doc)

	signedAt := testNow
	want := []SignatureView{{User: "u-owner", Email: "owner@example.com", SignedAt: &signedAt}}
	if diff := cmp.Diff(want, view.Signatures); diff != "" {
		t.Errorf("signatures mismatch (-want +got):\n%s", diff)
	}
	if view.SignedFileURL != nil {
		t.Errorf("signedFileUrl should be null, got %q", *view.SignedFileURL)
	}
	if view.Status != StatusPartiallySigned {
		t.Errorf("status = %q", view.Status)
	}
	if len(view.Parties) != 2 {
		t.Errorf("expected 2 parties in view, got %d", len(view.Parties))
	}
}

func TestSignedPartiesFollowsPartyOrder(t *testing.T) {
	doc := newTestDocument()
	doc.AddParty(UnregisteredIdentity("first@example.com"), "first@example.com")
	doc.AddParty(RegisteredIdentity("u-second"), "second@example.com")

	doc.RecordSignature(Signer{UserID: "u-second", Email: "second@example.com"}, "data:image/png;base64,CCC", testNow)

	var got []string
	for _, p := range doc.SignedParties() {
		got = append(got, p.Identity.String())
	}
	want := []string{"user:u-owner", "user:u-second"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("signed parties mismatch (-want +got):\n%s", diff)
	}

	if got := UnregisteredIdentity("first@example.com").String(); got != "email:first@example.com" {
		t.Errorf("unregistered identity = %q", got)
	}
}
