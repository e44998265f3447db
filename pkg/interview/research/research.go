package research

import "strings"

// Kinds of research output.
const (
	KindDefinition        = "definition"
	KindCounterpoint      = "counterpoint"
	KindExample           = "example"
	KindMetric            = "metric"
	KindPerson            = "person"
	KindCompany           = "company"
	KindContext           = "context"
	KindTrend             = "trend"
	KindClaimVerification = "claim_verification"
)

// Verification statuses for claim_verification items.
const (
	StatusVerified      = "verified"
	StatusContradicted  = "contradicted"
	StatusPartiallyTrue = "partially_true"
	StatusUnverifiable  = "unverifiable"
)

// Verification carries the outcome of a claim check.
type Verification struct {
	Status string `json:"status" validate:"omitempty,oneof=verified contradicted partially_true unverifiable"`
	Note   string `json:"note,omitempty"`
}

// Item is one researched fact ready to be folded into a question.
type Item struct {
	Topic        string        `json:"topic" validate:"required"`
	Kind         string        `json:"kind" validate:"required,oneof=definition counterpoint example metric person company context trend claim_verification"`
	Summary      string        `json:"summary" validate:"required"`
	HowToUse     string        `json:"how_to_use"`
	Priority     int           `json:"priority" validate:"min=1,max=3"`
	Verification *Verification `json:"verification,omitempty"`
}

// TopicKey normalizes a topic string into its case-insensitive dedup key.
func TopicKey(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

// AppendDeduped appends incoming items whose topic key is not already
// present. Existing items always win; the accumulated list is append-only.
func AppendDeduped(existing []Item, incoming ...Item) []Item {
	seen := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		seen[TopicKey(item.Topic)] = struct{}{}
	}

	for _, item := range incoming {
		key := TopicKey(item.Topic)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		existing = append(existing, item)
	}
	return existing
}
