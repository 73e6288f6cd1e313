package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Profile holds the questionnaire answers and declared preferences used by
// the matching engine, plus opaque references into external storage. The
// encrypted profile body lives off-node; only ContentRef crosses into the
// protocol. Profiles are overwritten wholesale on resubmission and are never
// deleted.
type Profile struct {
	Account      common.Address `json:"account"`
	ContentRef   string         `json:"contentRef"`
	PublicKeyRef string         `json:"publicKeyRef"`
	Active       bool           `json:"active"`
	Reputation   int            `json:"reputation"` // 0..100, starts at 100
	Answers      []bool         `json:"answers"`
	Preferences  []bool         `json:"preferences"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// CompatibilityScore computes the symmetric declared-preference score
// between two profiles, bounded to [0,100]. Each profile's answers are
// compared position-wise against the other's preferences; equal positions
// count as matches.
func CompatibilityScore(a, b Profile) int {
	m := equalPositions(a.Answers, b.Preferences) + equalPositions(b.Answers, a.Preferences)
	return 100 * m / (2 * AnswerCount)
}

func equalPositions(answers, preferences []bool) int {
	n := 0
	for i := range answers {
		if i >= len(preferences) {
			break
		}
		if answers[i] == preferences[i] {
			n++
		}
	}
	return n
}
