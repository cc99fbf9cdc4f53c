package llm

import (
	"fmt"
	"worldmon/internal/model"
)

// SchemaError marks model output that violates the report contract. It is
// fatal for a run and never coerced into a best-effort report.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("model output violates report schema: %s: %s", e.Field, e.Reason)
}

var validSentiments = map[string]bool{
	"positive": true,
	"negative": true,
	"neutral":  true,
	"mixed":    true,
}

// ValidateMonitorOutput enforces the structural contract: every topic section
// present with an enumerated sentiment, and a non-empty executive summary.
func ValidateMonitorOutput(out *MonitorOutput) error {
	if out.ExecutiveSummary == "" {
		return &SchemaError{Field: "executive_summary", Reason: "missing"}
	}

	for _, topic := range model.Topics() {
		section := out.Sections()[topic]
		if section == nil {
			return &SchemaError{Field: topic, Reason: "section missing"}
		}
		if !validSentiments[section.Sentiment] {
			return &SchemaError{
				Field:  topic + ".sentiment",
				Reason: fmt.Sprintf("%q is not one of positive|negative|neutral|mixed", section.Sentiment),
			}
		}
	}

	if out.MarketSentiment == "" {
		out.MarketSentiment = "neutral"
	} else if !validSentiments[out.MarketSentiment] {
		return &SchemaError{
			Field:  "market_sentiment",
			Reason: fmt.Sprintf("%q is not one of positive|negative|neutral|mixed", out.MarketSentiment),
		}
	}

	return nil
}
