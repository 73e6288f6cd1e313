package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/kindred-protocol/kindred"
	"github.com/kindred-protocol/kindred/internal/domain"
)

// SubmitProfileInput is the validated input for a profile submission.
type SubmitProfileInput struct {
	Account      common.Address
	ContentRef   string
	PublicKeyRef string
	Answers      []bool
	Preferences  []bool
}

// Profiles is the registry of questionnaire answers and preferences keyed
// by account. Records are created once and then overwritten wholesale;
// there is no deletion.
type Profiles struct {
	lock    *StateLock
	repo    ProfileRepository
	content ContentGateway
	signal  Publisher
	logger  *zap.Logger
	clock   Clock
}

func NewProfiles(lock *StateLock, repo ProfileRepository, content ContentGateway, signal Publisher, logger *zap.Logger, clock Clock) *Profiles {
	if lock == nil {
		lock = &StateLock{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Profiles{
		lock:    lock,
		repo:    repo,
		content: content,
		signal:  signal,
		logger:  logger,
		clock:   clock,
	}
}

// Submit creates the profile with reputation 100 on first submission, or
// overwrites every mutable field on resubmission. Validation rejects before
// any state change.
func (p *Profiles) Submit(ctx context.Context, input SubmitProfileInput) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if len(input.Answers) != domain.AnswerCount || len(input.Preferences) != domain.AnswerCount {
		return domain.ErrInvalidInputLength
	}
	if input.ContentRef == "" || input.PublicKeyRef == "" {
		return domain.ErrEmptyReference
	}

	existing, err := p.repo.Get(ctx, input.Account)
	created := false
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return err
		}
		created = true
		existing = domain.Profile{
			Account:    input.Account,
			Reputation: 100,
		}
	}

	existing.ContentRef = input.ContentRef
	existing.PublicKeyRef = input.PublicKeyRef
	existing.Active = true
	existing.Answers = append([]bool(nil), input.Answers...)
	existing.Preferences = append([]bool(nil), input.Preferences...)
	existing.UpdatedAt = p.clock()

	if err := p.repo.Save(ctx, existing); err != nil {
		return err
	}

	eventType := kindred.EventProfileUpdated
	if created {
		eventType = kindred.EventProfileCreated
	}
	p.emit(ctx, kindred.NewEvent(eventType, kindred.ProfilePayload{
		Account:    input.Account,
		ContentRef: input.ContentRef,
	}))
	return nil
}

// Get returns the full profile record, or ErrProfileNotFound when the
// account has no active profile.
func (p *Profiles) Get(ctx context.Context, account common.Address) (domain.Profile, error) {
	profile, err := p.repo.Get(ctx, account)
	if err != nil {
		return domain.Profile{}, err
	}
	if !profile.Active {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return profile, nil
}

// Content returns the encrypted profile body behind the account's content
// reference. The ledger only holds the reference; the blob itself lives in
// the external content-addressed store.
func (p *Profiles) Content(ctx context.Context, account common.Address) ([]byte, error) {
	profile, err := p.Get(ctx, account)
	if err != nil {
		return nil, err
	}
	if p.content == nil {
		return nil, domain.StateError{Reason: "no content gateway configured"}
	}
	return p.content.Fetch(ctx, profile.ContentRef)
}

func (p *Profiles) emit(ctx context.Context, event kindred.Event) {
	if p.signal == nil {
		return
	}
	if err := p.signal.Publish(ctx, event); err != nil && p.logger != nil {
		p.logger.Warn("event publish failed", zap.String("type", event.Type), zap.Error(err))
	}
}
