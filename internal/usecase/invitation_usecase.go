package usecase

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"easysign/internal/config"
	"easysign/internal/domain/entity"
	"easysign/internal/domain/repository"
	"easysign/internal/infrastructure/lock"
	"easysign/internal/infrastructure/mailer"
)

type InvitationUsecase interface {
	// Invite adds each email as a signing party (once) and sends every invitee a
	// signature request. Mail failures never fail the invitation.
	Invite(ctx context.Context, documentID string, inviter entity.Signer, emails ...string) (*entity.Document, error)
}

type invitationUsecase struct {
	documentStore
	config *config.Config
	users  repository.UserRepository
	outbox mailer.Outbox
}

func NewInvitationUsecase(
	cfg *config.Config,
	documents repository.DocumentRepository,
	events repository.EventRepository,
	users repository.UserRepository,
	locker lock.Locker,
	outbox mailer.Outbox,
	logger *zap.Logger,
) InvitationUsecase {
	return &invitationUsecase{
		documentStore: documentStore{
			documents: documents,
			events:    events,
			locker:    locker,
			logger:    logger,
			now:       time.Now,
		},
		config: cfg,
		users:  users,
		outbox: outbox,
	}
}

func normalizeRecipients(emails []string) ([]string, error) {
	seen := make(map[string]bool, len(emails))
	recipients := make([]string, 0, len(emails))

	for _, raw := range emails {
		email := entity.NormalizeEmail(raw)
		if email == "" {
			continue
		}
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return nil, entity.NewValidationError("invalid email address %q", raw)
		}
		if seen[email] {
			continue
		}
		seen[email] = true
		recipients = append(recipients, email)
	}

	if len(recipients) == 0 {
		return nil, entity.NewValidationError("recipient email is required")
	}
	return recipients, nil
}

func (u *invitationUsecase) Invite(ctx context.Context, documentID string, inviter entity.Signer, emails ...string) (*entity.Document, error) {
	if documentID == "" {
		return nil, entity.NewValidationError("documentId is required")
	}
	recipients, err := normalizeRecipients(emails)
	if err != nil {
		return nil, err
	}

	var (
		doc   *entity.Document
		added []string
	)
	err = u.withDocumentLock(ctx, documentID, func() error {
		var err error
		if doc, err = u.load(ctx, documentID); err != nil {
			return err
		}

		for _, email := range recipients {
			identity := u.resolveIdentity(ctx, email)
			if doc.AddParty(identity, email) {
				u.logger.Debug("Party added",
					zap.String("document_id", documentID),
					zap.Stringer("identity", identity),
				)
				added = append(added, email)
			}
		}
		if len(added) == 0 {
			return nil
		}
		return u.save(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	for _, email := range added {
		u.recordEvent(ctx, documentID, entity.EventInvited, inviter.Email, email)
	}

	u.logger.Info("Signing parties invited",
		zap.String("document_id", documentID),
		zap.Strings("recipients", recipients),
		zap.Int("added", len(added)),
	)

	u.sendInvitations(ctx, doc, inviter, recipients)

	return doc, nil
}

// resolveIdentity binds the invitee to a registered user when one has this email
func (u *invitationUsecase) resolveIdentity(ctx context.Context, email string) entity.Identity {
	user, err := u.users.FindByEmail(ctx, email)
	if err == nil {
		return entity.RegisteredIdentity(user.ID)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		u.logger.Warn("Failed to resolve invitee, inviting by email",
			zap.String("email", email),
			zap.Error(err),
		)
	}
	return entity.UnregisteredIdentity(email)
}

func (u *invitationUsecase) sendInvitations(ctx context.Context, doc *entity.Document, inviter entity.Signer, recipients []string) {
	link := mailer.SignLink(u.config.Mail.SignLinkBase, doc.ID)
	inviterName := inviter.Name
	if inviterName == "" {
		inviterName = inviter.Email
	}

	var g errgroup.Group
	if u.config.Mail.FanoutLimit > 0 {
		g.SetLimit(u.config.Mail.FanoutLimit)
	}

	for _, email := range recipients {
		email := email
		g.Go(func() error {
			msg, err := mailer.NewInvitation(email, mailer.InvitationData{
				Inviter: inviterName,
				Title:   doc.Title,
				Link:    link,
			})
			if err == nil {
				err = u.outbox.Enqueue(ctx, msg)
			}
			if err != nil {
				u.logger.Error("Failed to queue invitation mail",
					zap.String("document_id", doc.ID),
					zap.String("to", email),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}
