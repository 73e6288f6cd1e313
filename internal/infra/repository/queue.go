package repository

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kindred-protocol/kindred/internal/domain"
	"github.com/kindred-protocol/kindred/internal/infra/database/models"
	"github.com/kindred-protocol/kindred/internal/usecase"
)

type QueueRepository struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

// AppendStaked persists the staked balance and the queue entry in one
// transaction so a crash between the two cannot leave a staked account off
// the queue.
func (r *QueueRepository) AppendStaked(ctx context.Context, balance domain.Balance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := balanceToModel(balance)
		err := tx.Clauses(clause.OnConflict{
			UpdateAll: true,
		}).Create(&m).Error
		if err != nil {
			return errors.Wrap(err, "failed to save staked balance")
		}

		entry := models.QueueEntry{
			Account: balance.Account.Hex(),
		}
		err = tx.Clauses(clause.OnConflict{
			DoNothing: true,
		}).Create(&entry).Error
		return errors.Wrap(err, "failed to append queue entry")
	})
}

func (r *QueueRepository) List(ctx context.Context) ([]common.Address, error) {
	var entries []models.QueueEntry
	err := r.db.WithContext(ctx).Order("id asc").Find(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list queue")
	}

	accounts := make([]common.Address, 0, len(entries))
	for _, entry := range entries {
		addr, err := kindredAddress(entry.Account)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, addr)
	}
	return accounts, nil
}

func (r *QueueRepository) Length(ctx context.Context) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.QueueEntry{}).Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count queue")
	}
	return int(count), nil
}

var _ usecase.QueueRepository = (*QueueRepository)(nil)
