package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"easysign/internal/domain/entity"
	"easysign/internal/infrastructure/mailer"
)

func TestInviteTwiceAddsOneParty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.uploadDocument(t, 1)

	for i := 0; i < 2; i++ {
		if _, err := f.invites.Invite(ctx, doc.ID, owner, "new@example.com"); err != nil {
			t.Fatalf("Invite #%d: %v", i+1, err)
		}
	}

	stored, _ := f.docs.FindByID(ctx, doc.ID)
	if len(stored.SigningParties) != 2 {
		t.Fatalf("parties = %d, want 2", len(stored.SigningParties))
	}
	if stored.Version != doc.Version+1 {
		t.Errorf("a no-op invite should not save: version %d", stored.Version)
	}

	// every invite sends a reminder, even for an existing party
	if len(f.outbox.sent) != 2 {
		t.Errorf("mails = %d, want 2", len(f.outbox.sent))
	}
	invited := 0
	for _, k := range f.eventKinds(t, doc.ID) {
		if k == entity.EventInvited {
			invited++
		}
	}
	if invited != 1 {
		t.Errorf("invited events = %d, want 1", invited)
	}
}

func TestInviteResolvesRegisteredUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.uploadDocument(t, 1)

	got, err := f.invites.Invite(ctx, doc.ID, owner, " Guest@Example.com ", "outsider@example.com")
	if err != nil {
		t.Fatal(err)
	}

	if i := got.FindParty(guest.UserID, ""); i < 0 {
		t.Error("registered guest should be bound to their user id")
	}
	if i := got.FindParty("", "outsider@example.com"); i < 0 || got.SigningParties[i].Identity.IsRegistered() {
		t.Error("unknown email should stay unregistered")
	}
}

func TestInviteMailContent(t *testing.T) {
	f := newFixture(t)
	doc := f.uploadDocument(t, 1)

	if _, err := f.invites.Invite(context.Background(), doc.ID, owner, "new@example.com"); err != nil {
		t.Fatal(err)
	}

	msg := f.outbox.sent[0]
	if msg.To != "new@example.com" || msg.Subject != mailer.InvitationSubject {
		t.Errorf("unexpected message header: %+v", msg)
	}
	if !strings.Contains(msg.HTMLBody, "http://localhost:5173/sign/"+doc.ID) {
		t.Errorf("missing sign link in %s", msg.HTMLBody)
	}
}

func TestInviteSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.uploadDocument(t, 1)
	f.outbox.err = errors.New("redis down")

	got, err := f.invites.Invite(ctx, doc.ID, owner, "a@example.com", "b@example.com")
	if err != nil {
		t.Fatalf("mail failure must not fail invite: %v", err)
	}
	if len(got.SigningParties) != 3 {
		t.Errorf("parties = %d, want 3", len(got.SigningParties))
	}
	if got.Status() != entity.StatusPartiallySigned {
		t.Errorf("status = %q", got.Status())
	}
}

func TestInviteValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.uploadDocument(t, 1)

	tests := []struct {
		name   string
		id     string
		emails []string
		want   entity.ErrorKind
	}{
		{"no document", "", []string{"a@example.com"}, entity.KindValidation},
		{"no emails", doc.ID, nil, entity.KindValidation},
		{"blank emails", doc.ID, []string{" ", ""}, entity.KindValidation},
		{"malformed", doc.ID, []string{"not-an-email"}, entity.KindValidation},
		{"unknown document", "missing", []string{"a@example.com"}, entity.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.invites.Invite(ctx, tt.id, owner, tt.emails...)
			assertKind(t, err, tt.want)
		})
	}

	if len(f.outbox.sent) != 0 {
		t.Errorf("no mail should be sent for rejected invites, got %d", len(f.outbox.sent))
	}
}
