package kindred

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	EventProfileCreated    string = "kindred.profile.created"
	EventProfileUpdated    string = "kindred.profile.updated"
	EventStaked            string = "kindred.staking.staked"
	EventUnstaked          string = "kindred.staking.unstaked"
	EventRewardsClaimed    string = "kindred.staking.rewards-claimed"
	EventMatchCreated      string = "kindred.matching.match-created"
	EventMatchingCompleted string = "kindred.matching.round-completed"
	EventParametersUpdated string = "kindred.governance.parameters-updated"
	EventIdentityVerified  string = "kindred.identity.verified"
)

// Event is the envelope published to external indexers.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

type ProfilePayload struct {
	Account    common.Address `json:"account"`
	ContentRef string         `json:"contentRef"`
}

type StakePayload struct {
	Account common.Address `json:"account"`
	Amount  string         `json:"amount"`
}

type RewardPayload struct {
	Account common.Address `json:"account"`
	Amount  string         `json:"amount"`
}

type MatchPayload struct {
	MatchID  string         `json:"matchId"`
	AccountA common.Address `json:"accountA"`
	AccountB common.Address `json:"accountB"`
	Score    int            `json:"score"`
}

type RoundPayload struct {
	MatchCount int       `json:"matchCount"`
	ExecutedAt time.Time `json:"executedAt"`
}

type ParamsPayload struct {
	Version uint64 `json:"version"`
}

type IdentityPayload struct {
	Account       common.Address `json:"account"`
	NullifierHash string         `json:"nullifierHash"`
}

// NewEvent stamps an event envelope with the current time.
func NewEvent(eventType string, payload any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
