package repository

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kindred-protocol/kindred/internal/domain"
	"github.com/kindred-protocol/kindred/internal/infra/database/models"
	"github.com/kindred-protocol/kindred/internal/usecase"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Get(ctx context.Context, account common.Address) (domain.Profile, error) {
	var m models.Profile
	err := r.db.WithContext(ctx).Take(&m, "account = ?", account.Hex()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Profile{}, domain.ErrProfileNotFound
		}
		return domain.Profile{}, errors.Wrap(err, "failed to load profile")
	}

	addr, err := kindredAddress(m.Account)
	if err != nil {
		return domain.Profile{}, err
	}

	return domain.Profile{
		Account:      addr,
		ContentRef:   m.ContentRef,
		PublicKeyRef: m.PublicKeyRef,
		Active:       m.Active,
		Reputation:   m.Reputation,
		Answers:      []bool(m.Answers),
		Preferences:  []bool(m.Preferences),
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

func (r *ProfileRepository) Save(ctx context.Context, profile domain.Profile) error {
	m := models.Profile{
		Account:      profile.Account.Hex(),
		ContentRef:   profile.ContentRef,
		PublicKeyRef: profile.PublicKeyRef,
		Active:       profile.Active,
		Reputation:   profile.Reputation,
		Answers:      pq.BoolArray(profile.Answers),
		Preferences:  pq.BoolArray(profile.Preferences),
		UpdatedAt:    profile.UpdatedAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		UpdateAll: true,
	}).Create(&m).Error
	return errors.Wrap(err, "failed to save profile")
}

var _ usecase.ProfileRepository = (*ProfileRepository)(nil)
