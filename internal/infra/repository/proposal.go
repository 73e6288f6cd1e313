package repository

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kindred-protocol/kindred/internal/domain"
	"github.com/kindred-protocol/kindred/internal/infra/database/models"
	"github.com/kindred-protocol/kindred/internal/usecase"
)

type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Get(ctx context.Context, id string) (domain.Proposal, error) {
	var m models.Proposal
	err := r.db.WithContext(ctx).Take(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Proposal{}, domain.StateError{Reason: "proposal not found"}
		}
		return domain.Proposal{}, errors.Wrap(err, "failed to load proposal")
	}
	return proposalFromModel(m)
}

func (r *ProposalRepository) Save(ctx context.Context, proposal domain.Proposal) error {
	m, err := proposalToModel(proposal)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		UpdateAll: true,
	}).Create(&m).Error
	return errors.Wrap(err, "failed to save proposal")
}

// SaveVote persists the updated tally and the ballot together so a vote can
// never be counted without being recorded.
func (r *ProposalRepository) SaveVote(ctx context.Context, proposal domain.Proposal, vote domain.Vote) error {
	m, err := proposalToModel(proposal)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			UpdateAll: true,
		}).Create(&m).Error
		if err != nil {
			return errors.Wrap(err, "failed to update proposal tally")
		}

		ballot := models.Vote{
			ProposalID: vote.ProposalID,
			Voter:      vote.Voter.Hex(),
			Support:    vote.Support,
			Weight:     vote.Weight.String(),
		}
		err = tx.Create(&ballot).Error
		return errors.Wrap(err, "failed to record vote")
	})
}

func (r *ProposalRepository) HasVoted(ctx context.Context, proposalID string, voter common.Address) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("proposal_id = ? AND voter = ?", proposalID, voter.Hex()).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check vote")
	}
	return count > 0, nil
}

func proposalToModel(p domain.Proposal) (models.Proposal, error) {
	candidate, err := json.Marshal(p.Candidate)
	if err != nil {
		return models.Proposal{}, errors.Wrap(err, "failed to encode candidate params")
	}
	return models.Proposal{
		ID:           p.ID,
		Proposer:     p.Proposer.Hex(),
		Candidate:    string(candidate),
		VotesFor:     p.VotesFor.String(),
		VotesAgainst: p.VotesAgainst.String(),
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
		VotingEnds:   p.VotingEnds,
	}, nil
}

func proposalFromModel(m models.Proposal) (domain.Proposal, error) {
	proposer, err := kindredAddress(m.Proposer)
	if err != nil {
		return domain.Proposal{}, err
	}

	var candidate domain.Params
	if err := json.Unmarshal([]byte(m.Candidate), &candidate); err != nil {
		return domain.Proposal{}, errors.Wrap(err, "failed to decode candidate params")
	}

	votesFor, err := numeric(m.VotesFor)
	if err != nil {
		return domain.Proposal{}, errors.Wrap(err, "votes for")
	}
	votesAgainst, err := numeric(m.VotesAgainst)
	if err != nil {
		return domain.Proposal{}, errors.Wrap(err, "votes against")
	}

	return domain.Proposal{
		ID:           m.ID,
		Proposer:     proposer,
		Candidate:    candidate,
		VotesFor:     votesFor,
		VotesAgainst: votesAgainst,
		Status:       domain.ProposalStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		VotingEnds:   m.VotingEnds,
	}, nil
}

var _ usecase.ProposalRepository = (*ProposalRepository)(nil)
