package usecase

import (
	"context"
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"

	"github.com/kindred-protocol/kindred/internal/domain"
)

func TestInitGenesisGrantsAndSeals(t *testing.T) {
	s := newMemState()
	ledger := NewLedger(&StateLock{}, &memBalances{s: s}, addr(255), nil)
	ctx := context.Background()

	err := ledger.InitGenesis(ctx, []GenesisAllocation{
		{Account: addr(1), Amount: domain.Tokens(600)},
		{Account: addr(2), Amount: domain.Tokens(400)},
	})
	if err != nil {
		t.Fatalf("genesis failed: %v", err)
	}

	supply, err := ledger.TotalSupply(ctx)
	if err != nil {
		t.Fatalf("supply failed: %v", err)
	}
	if !supply.Equal(domain.Tokens(1000)) {
		t.Fatalf("expected supply 1000, got %s", supply)
	}

	// initializing twice is refused
	err = ledger.InitGenesis(ctx, []GenesisAllocation{{Account: addr(3), Amount: domain.Tokens(1)}})
	if !errors.Is(err, domain.StateError{}) {
		t.Fatalf("expected StateError on re-init, got %v", err)
	}
}

func TestInitGenesisRejectsOverCap(t *testing.T) {
	s := newMemState()
	ledger := NewLedger(&StateLock{}, &memBalances{s: s}, addr(255), nil)

	err := ledger.InitGenesis(context.Background(), []GenesisAllocation{
		{Account: addr(1), Amount: domain.MaxSupply},
		{Account: addr(2), Amount: domain.Tokens(1)},
	})
	if !errors.Is(err, domain.ErrMaxSupplyExceeded) {
		t.Fatalf("expected ErrMaxSupplyExceeded, got %v", err)
	}
	if len(s.balances) != 0 {
		t.Fatalf("failed genesis wrote balances")
	}
}

func TestTransfer(t *testing.T) {
	s := newMemState()
	s.setBalance(addr(1), domain.Tokens(100))
	ledger := NewLedger(&StateLock{}, &memBalances{s: s}, addr(255), nil)
	ctx := context.Background()

	if err := ledger.Transfer(ctx, addr(1), addr(2), domain.Tokens(30)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	from, _ := ledger.BalanceOf(ctx, addr(1))
	to, _ := ledger.BalanceOf(ctx, addr(2))
	if !from.Equal(domain.Tokens(70)) || !to.Equal(domain.Tokens(30)) {
		t.Fatalf("expected 70/30 split, got %s/%s", from, to)
	}

	supply, _ := ledger.TotalSupply(ctx)
	if !supply.Equal(domain.Tokens(100)) {
		t.Fatalf("transfer changed supply to %s", supply)
	}
}

func TestTransferRejections(t *testing.T) {
	s := newMemState()
	s.setBalance(addr(1), domain.Tokens(10))
	ledger := NewLedger(&StateLock{}, &memBalances{s: s}, addr(255), nil)
	ctx := context.Background()

	if err := ledger.Transfer(ctx, addr(1), addr(2), sdkmath.ZeroInt()); !errors.Is(err, domain.ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
	if err := ledger.Transfer(ctx, addr(1), addr(1), domain.Tokens(1)); !errors.Is(err, domain.ValidationError{}) {
		t.Fatalf("expected ValidationError on self transfer, got %v", err)
	}
	if err := ledger.Transfer(ctx, addr(1), addr(2), domain.Tokens(11)); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if b, _ := ledger.BalanceOf(ctx, addr(1)); !b.Equal(domain.Tokens(10)) {
		t.Fatalf("rejected transfers mutated the sender, balance %s", b)
	}
}

func TestTransferDoesNotTouchStaked(t *testing.T) {
	s := newMemState()
	b := domain.NewBalance(addr(1))
	b.Liquid = domain.Tokens(5)
	b.Staked = domain.Tokens(100)
	s.balances[addr(1)] = b

	ledger := NewLedger(&StateLock{}, &memBalances{s: s}, addr(255), nil)

	err := ledger.Transfer(context.Background(), addr(1), addr(2), domain.Tokens(50))
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("staked tokens must not be transferable, got %v", err)
	}
}

func TestWithdrawFeesSplitsWithRemainder(t *testing.T) {
	s := newMemState()
	fee := addr(255)
	s.setBalance(fee, sdkmath.NewInt(1001))

	ledger := NewLedger(&StateLock{}, &memBalances{s: s}, fee, []TreasurySplit{
		{Beneficiary: addr(1), Bps: 7000},
		{Beneficiary: addr(2), Bps: 3000},
	})
	ctx := context.Background()

	if err := ledger.WithdrawFees(ctx); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	// 70% of 1001 truncates to 700; the last beneficiary takes the rest
	a, _ := ledger.BalanceOf(ctx, addr(1))
	b, _ := ledger.BalanceOf(ctx, addr(2))
	rest, _ := ledger.BalanceOf(ctx, fee)
	if !a.Equal(sdkmath.NewInt(700)) || !b.Equal(sdkmath.NewInt(301)) {
		t.Fatalf("expected 700/301 disbursement, got %s/%s", a, b)
	}
	if !rest.IsZero() {
		t.Fatalf("expected drained fee account, got %s", rest)
	}
}

func TestWithdrawFeesEmptyPoolIsNoop(t *testing.T) {
	s := newMemState()
	ledger := NewLedger(&StateLock{}, &memBalances{s: s}, addr(255), []TreasurySplit{
		{Beneficiary: addr(1), Bps: 10000},
	})

	if err := ledger.WithdrawFees(context.Background()); err != nil {
		t.Fatalf("withdraw on empty pool failed: %v", err)
	}
	if len(s.balances) != 0 {
		t.Fatalf("noop withdraw wrote balances")
	}
}
