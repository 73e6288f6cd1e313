package domain

import (
	"encoding/binary"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Match is an immutable pairing record, owned jointly by both participants'
// histories.
type Match struct {
	ID        string         `json:"id"`
	AccountA  common.Address `json:"accountA"`
	AccountB  common.Address `json:"accountB"`
	Score     int            `json:"score"` // 0..100
	Active    bool           `json:"active"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewMatchID derives a round-unique identifier from both participants and
// the creation time. Nanosecond resolution keeps IDs from colliding across
// rounds for a recurring pair.
func NewMatchID(a, b common.Address, createdAt time.Time) string {
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(createdAt.UnixNano()))
	return crypto.Keccak256Hash(a.Bytes(), b.Bytes(), ts).Hex()
}

// Has reports whether account participates in the match.
func (m Match) Has(account common.Address) bool {
	return m.AccountA == account || m.AccountB == account
}

// Other returns the counterpart of account in the match.
func (m Match) Other(account common.Address) (common.Address, bool) {
	if m.AccountA == account {
		return m.AccountB, true
	}
	if m.AccountB == account {
		return m.AccountA, true
	}
	return common.Address{}, false
}

// RoundResult is the complete outcome of one matching round, computed in
// memory before any write. Committing it is a single atomic storage
// transaction; a failure leaves the queue and all balances untouched.
type RoundResult struct {
	ExecutedAt time.Time
	Matches    []Match
	Balances   []Balance // every balance mutated by the round
}
