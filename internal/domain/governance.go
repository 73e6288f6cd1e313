package domain

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

type ProposalStatus string

const (
	ProposalOpen     ProposalStatus = "open"
	ProposalPassed   ProposalStatus = "passed"
	ProposalRejected ProposalStatus = "rejected"
)

// Proposal carries a candidate Params record through weighted voting.
type Proposal struct {
	ID           string         `json:"id"`
	Proposer     common.Address `json:"proposer"`
	Candidate    Params         `json:"candidate"`
	VotesFor     sdkmath.Int    `json:"votesFor"`
	VotesAgainst sdkmath.Int    `json:"votesAgainst"`
	Status       ProposalStatus `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	VotingEnds   time.Time      `json:"votingEnds"`
}

// Vote is one staker's weighted ballot on a proposal.
type Vote struct {
	ProposalID string         `json:"proposalId"`
	Voter      common.Address `json:"voter"`
	Support    bool           `json:"support"`
	Weight     sdkmath.Int    `json:"weight"`
	CastAt     time.Time      `json:"castAt"`
}
