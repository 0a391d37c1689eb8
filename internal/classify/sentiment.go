// internal/classify/sentiment.go
package classify

import "strings"

// SentimentReport scores a single piece of text for live monitoring of
// ticket comments and chat messages.
type SentimentReport struct {
	Score      int       `json:"score"`
	Label      Sentiment `json:"label"`
	Indicators []string  `json:"indicators"`
}

var (
	positiveWords = []string{"thank", "appreciate", "great", "excellent", "helpful", "satisfied", "pleased"}
	negativeWords = []string{"frustrated", "angry", "terrible", "worst", "unacceptable", "disappointed", "useless", "broken"}
)

// MonitorSentiment scores text word lists: +1 per positive hit, -2 per
// negative hit. Label thresholds: positive at >= 2, negative at <= -2.
func (e *Engine) MonitorSentiment(text string) SentimentReport {
	lower := strings.ToLower(text)

	report := SentimentReport{
		Label:      SentimentNeutral,
		Indicators: []string{},
	}

	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			report.Score++
			report.Indicators = append(report.Indicators, "+"+word)
		}
	}

	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			report.Score -= 2
			report.Indicators = append(report.Indicators, "-"+word)
		}
	}

	if report.Score >= 2 {
		report.Label = SentimentPositive
	} else if report.Score <= -2 {
		report.Label = SentimentNegative
	}

	return report
}
