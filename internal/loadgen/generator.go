package loadgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/okian/triage/internal/domain/model"
)

// Text pools per mood. Ratings are drawn to roughly agree with the mood so the
// generated log spans every sentiment.
var (
	negativeFeedback = []string{ //nolint:gochecknoglobals // read-only pool
		"The checkout page crashes every time I try to pay",
		"Database queries time out and my orders are missing",
		"The server has been down all morning, terrible outage",
		"Login fails with an error after the last app update",
		"Reports are slow and the export is broken",
	}
	negativeSummary = []string{ //nolint:gochecknoglobals // read-only pool
		"Customer angry about repeated failures, wants a refund",
		"Escalated complaint about data loss in the database",
		"Frustrated user reporting network latency and downtime",
		"Customer unhappy, bug blocks their daily work",
	}
	neutralFeedback = []string{ //nolint:gochecknoglobals // read-only pool
		"The dashboard works but could load faster",
		"Setup was okay, documentation is average",
		"Some screens are confusing but I found the settings",
	}
	neutralSummary = []string{ //nolint:gochecknoglobals // read-only pool
		"Customer asked about configuration options",
		"General question about the deployment schedule",
		"User requested a walkthrough of the reporting feature",
	}
	positiveFeedback = []string{ //nolint:gochecknoglobals // read-only pool
		"Great app, the new release is fast and reliable",
		"Support resolved my issue quickly, thank you",
		"Love the new interface, everything works smoothly",
	}
	positiveSummary = []string{ //nolint:gochecknoglobals // read-only pool
		"Happy customer praising the latest update",
		"Customer thanked the team for the quick fix",
		"Positive call, user recommends the product",
	}
)

// Mood cases for generateSingle.
const (
	caseNegative = 0
	caseNeutral  = 1
	casePositive = 2
	moodCount    = 3
)

// randomInt returns a uniform integer in [0, n) using crypto/rand.
func randomInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func pick(pool []string) string {
	return pool[randomInt(len(pool))]
}

// Generate creates count synthetic submissions.
func Generate(ctx context.Context, count int) ([]model.Submission, error) {
	subs := make([]model.Submission, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled after %d submissions: %w", i, err)
		}
		subs = append(subs, generateSingle())
	}
	return subs, nil
}

// generateSingle draws a mood first, then a matching rating and texts.
func generateSingle() model.Submission {
	switch randomInt(moodCount) {
	case caseNegative:
		return model.Submission{
			Rating:   1 + randomInt(2),
			Feedback: pick(negativeFeedback),
			Summary:  pick(negativeSummary),
		}
	case caseNeutral:
		return model.Submission{
			Rating:   3,
			Feedback: pick(neutralFeedback),
			Summary:  pick(neutralSummary),
		}
	default:
		return model.Submission{
			Rating:   4 + randomInt(2),
			Feedback: pick(positiveFeedback),
			Summary:  pick(positiveSummary),
		}
	}
}
