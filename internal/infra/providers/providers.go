package providers

import (
	"github.com/bradfitz/gomemcache/memcache"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kindred-protocol/kindred"
	"github.com/kindred-protocol/kindred/client"
	"github.com/kindred-protocol/kindred/internal/config"
	"github.com/kindred-protocol/kindred/internal/infra/database"
	"github.com/kindred-protocol/kindred/internal/infra/gateway"
	"github.com/kindred-protocol/kindred/internal/infra/repository"
	"github.com/kindred-protocol/kindred/internal/service"
	"github.com/kindred-protocol/kindred/internal/usecase"
)

// NewDatabase opens a Postgres connection using the configured DSN.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	return database.NewPostgres(conf.PostgresDsn)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.MigratePostgres(db)
}

// NewMemcache creates a memcache client.
func NewMemcache(addr string) *memcache.Client {
	return memcache.New(addr)
}

// NewClient constructs the HTTP client for the external verifier and
// content store.
func NewClient(conf config.Server) *client.Client {
	return client.New(conf.VerifierURL, conf.ContentURL)
}

// App is the fully wired protocol node.
type App struct {
	Ledger     *usecase.Ledger
	Staking    *usecase.Staking
	Profiles   *usecase.Profiles
	Matching   *usecase.Matching
	Governance *usecase.Governance
	Identity   *service.IdentityService
}

// NewApp builds the complete dependency graph: repositories over db, the
// redis-backed event publisher, the cached content gateway, and every
// usecase sharing one state lock.
func NewApp(
	conf config.Config,
	db *gorm.DB,
	mc *memcache.Client,
	cl *client.Client,
	signal *service.SignalService,
	logger *zap.Logger,
) *App {
	balances := repository.NewBalanceRepository(db)
	profiles := repository.NewProfileRepository(db)
	queue := repository.NewQueueRepository(db)
	matches := repository.NewMatchRepository(db)
	rounds := repository.NewRoundRepository(db)
	params := repository.NewParamsRepository(db)
	proposals := repository.NewProposalRepository(db)

	content := gateway.NewContentGateway(cl, mc)

	lock := &usecase.StateLock{}

	splits := make([]usecase.TreasurySplit, 0, len(conf.Protocol.TreasurySplits))
	for _, split := range conf.Protocol.TreasurySplits {
		// addresses validated at config load
		beneficiary, _ := kindred.ParseAddress(split.Beneficiary)
		splits = append(splits, usecase.TreasurySplit{
			Beneficiary: beneficiary,
			Bps:         split.Bps,
		})
	}

	return &App{
		Ledger: usecase.NewLedger(lock, balances, conf.NodeInfo.FeeAccountAddr, splits),
		Staking: usecase.NewStaking(
			lock, balances, queue, params, signal, logger, nil, conf.Protocol.QueueCap,
		),
		Profiles: usecase.NewProfiles(lock, profiles, content, signal, logger, nil),
		Matching: usecase.NewMatching(
			lock, balances, profiles, queue, matches, rounds, params, signal, logger,
		),
		Governance: usecase.NewGovernance(
			lock, params, proposals, balances, signal, logger, nil,
			conf.NodeInfo.ExecutorAddr, conf.Protocol.VotingPeriod, conf.Protocol.QuorumBps,
		),
		Identity: service.NewIdentityService(cl, conf.NodeInfo.TrustedAuthorityAddr, signal),
	}
}
