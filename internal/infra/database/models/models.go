package models

import (
	"time"

	"github.com/lib/pq"
)

// Token amounts are stored as numeric(78,0) so postgres can sum full
// 256-bit values; the repository layer converts to and from sdkmath.Int
// through the decimal string form.

type Balance struct {
	Account          string    `json:"account" gorm:"primaryKey;type:char(42)"`
	Liquid           string    `json:"liquid" gorm:"type:numeric(78,0);not null;default:0"`
	Staked           string    `json:"staked" gorm:"type:numeric(78,0);not null;default:0"`
	IsStaked         bool      `json:"isStaked" gorm:"type:boolean;not null;default:false"`
	StakedAt         time.Time `json:"stakedAt" gorm:"type:timestamp with time zone"`
	StakeExpiry      time.Time `json:"stakeExpiry" gorm:"type:timestamp with time zone"`
	ConsecutiveWeeks uint32    `json:"consecutiveWeeks" gorm:"not null;default:0"`
	LastClaimAt      time.Time `json:"lastClaimAt" gorm:"type:timestamp with time zone"`
}

type Profile struct {
	Account      string       `json:"account" gorm:"primaryKey;type:char(42)"`
	ContentRef   string       `json:"contentRef" gorm:"type:text;not null"`
	PublicKeyRef string       `json:"publicKeyRef" gorm:"type:text;not null"`
	Active       bool         `json:"active" gorm:"type:boolean;not null;default:true"`
	Reputation   int          `json:"reputation" gorm:"not null;default:100"`
	Answers      pq.BoolArray `json:"answers" gorm:"type:boolean[];not null"`
	Preferences  pq.BoolArray `json:"preferences" gorm:"type:boolean[];not null"`
	UpdatedAt    time.Time    `json:"updatedAt" gorm:"type:timestamp with time zone"`
}

type Match struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	AccountA  string    `json:"accountA" gorm:"type:char(42);index"`
	AccountB  string    `json:"accountB" gorm:"type:char(42);index"`
	Score     int       `json:"score" gorm:"not null"`
	Active    bool      `json:"active" gorm:"type:boolean;not null;default:true"`
	CreatedAt time.Time `json:"createdAt" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// MatchParticipant joins a match to each participant's history so one
// indexed lookup serves MatchesOf.
type MatchParticipant struct {
	MatchID string `json:"matchId" gorm:"type:text;primaryKey"`
	Match   Match  `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Account string `json:"account" gorm:"type:char(42);index;primaryKey"`
}

type QueueEntry struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Account  string    `json:"account" gorm:"type:char(42);uniqueIndex"`
	QueuedAt time.Time `json:"queuedAt" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// Params is a single-row table; the fixed ID keeps replacement an upsert.
type Params struct {
	ID                    int    `json:"id" gorm:"primaryKey"`
	WeeklyStakeAmount     string `json:"weeklyStakeAmount" gorm:"type:numeric(78,0);not null"`
	MatchingIntervalSecs  int64  `json:"matchingIntervalSecs" gorm:"not null"`
	MinCompatibilityScore int    `json:"minCompatibilityScore" gorm:"not null"`
	MaxMatchesPerWeek     int    `json:"maxMatchesPerWeek" gorm:"not null"`
	StakingBonusRate      int    `json:"stakingBonusRate" gorm:"not null"`
	Version               uint64 `json:"version" gorm:"not null"`
}

// Round is append-only; the latest row carries the last execution time.
type Round struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ExecutedAt time.Time `json:"executedAt" gorm:"type:timestamp with time zone;not null;index"`
	MatchCount int       `json:"matchCount" gorm:"not null"`
}

type Proposal struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text"`
	Proposer     string    `json:"proposer" gorm:"type:char(42);index"`
	Candidate    string    `json:"candidate" gorm:"type:text;not null"` // Params as json
	VotesFor     string    `json:"votesFor" gorm:"type:numeric(78,0);not null;default:0"`
	VotesAgainst string    `json:"votesAgainst" gorm:"type:numeric(78,0);not null;default:0"`
	Status       string    `json:"status" gorm:"type:text;not null;index"`
	CreatedAt    time.Time `json:"createdAt" gorm:"type:timestamp with time zone"`
	VotingEnds   time.Time `json:"votingEnds" gorm:"type:timestamp with time zone"`
}

type Vote struct {
	ProposalID string    `json:"proposalId" gorm:"type:text;primaryKey"`
	Proposal   Proposal  `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Voter      string    `json:"voter" gorm:"type:char(42);primaryKey"`
	Support    bool      `json:"support" gorm:"type:boolean;not null"`
	Weight     string    `json:"weight" gorm:"type:numeric(78,0);not null"`
	CastAt     time.Time `json:"castAt" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
