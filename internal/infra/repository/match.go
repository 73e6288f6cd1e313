package repository

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/kindred-protocol/kindred/internal/domain"
	"github.com/kindred-protocol/kindred/internal/infra/database/models"
	"github.com/kindred-protocol/kindred/internal/usecase"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Get(ctx context.Context, id string) (domain.Match, error) {
	var m models.Match
	err := r.db.WithContext(ctx).Take(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Match{}, domain.StateError{Reason: "match not found"}
		}
		return domain.Match{}, errors.Wrap(err, "failed to load match")
	}
	return matchFromModel(m)
}

func (r *MatchRepository) ListByAccount(ctx context.Context, account common.Address) ([]domain.Match, error) {
	var rows []models.Match
	err := r.db.WithContext(ctx).
		Joins("JOIN match_participants ON match_participants.match_id = matches.id").
		Where("match_participants.account = ?", account.Hex()).
		Order("matches.created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list matches")
	}

	matches := make([]domain.Match, 0, len(rows))
	for _, row := range rows {
		match, err := matchFromModel(row)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func matchFromModel(m models.Match) (domain.Match, error) {
	a, err := kindredAddress(m.AccountA)
	if err != nil {
		return domain.Match{}, err
	}
	b, err := kindredAddress(m.AccountB)
	if err != nil {
		return domain.Match{}, err
	}
	return domain.Match{
		ID:        m.ID,
		AccountA:  a,
		AccountB:  b,
		Score:     m.Score,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}, nil
}

var _ usecase.MatchRepository = (*MatchRepository)(nil)
