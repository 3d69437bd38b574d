package router

import (
	"context"
	"strings"

	"medirouter/models"
)

// Classifier maps free-form request text to an intent. Implementations
// must be deterministic for identical input.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.Intent, error)
}

// intentKeywords lists the signal words per intent. Matching follows a
// fixed priority order so ambiguous input always routes the same way:
// booking > comparison > emergency > diagnostic.
var intentPriority = []struct {
	intent   models.Intent
	keywords []string
}{
	{models.IntentBooking, []string{"book", "appointment", "reserve", "schedule", "slot"}},
	{models.IntentComparison, []string{"compare", "comparison", "best", "rank", "cheapest", "versus", "vs"}},
	{models.IntentEmergency, []string{"emergency", "ambulance", "urgent", "trauma"}},
	{models.IntentDiagnostic, []string{"test", "lab", "scan", "x-ray", "mri", "diagnostic", "blood", "imaging"}},
}

// KeywordClassifier is the deterministic default classifier. When
// Fallback is set, unmatched text classifies as a general lookup;
// otherwise classification fails and the router reports AmbiguousIntent.
type KeywordClassifier struct {
	Fallback bool
}

func (c *KeywordClassifier) Classify(_ context.Context, text string) (models.Intent, error) {
	lower := strings.ToLower(text)
	for _, entry := range intentPriority {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.intent, nil
			}
		}
	}
	if c.Fallback {
		return models.IntentGeneral, nil
	}
	return "", NewAmbiguousIntent("request matched no known intent")
}

// clampIntent resolves a free-form classifier answer to the known
// intent set using the same priority order, so an LLM-backed
// classifier cannot produce a nondeterministic or unknown dispatch
// target.
func clampIntent(answer string, fallback bool) (models.Intent, error) {
	lower := strings.ToLower(answer)
	for _, entry := range intentPriority {
		if strings.Contains(lower, string(entry.intent)) {
			return entry.intent, nil
		}
	}
	if strings.Contains(lower, string(models.IntentGeneral)) || fallback {
		return models.IntentGeneral, nil
	}
	return "", NewAmbiguousIntent("classifier produced no usable intent")
}
