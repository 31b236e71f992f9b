package scoring

import (
	"fmt"
	"strings"

	"RecoPulse/internal/domain/models"
)

var actionText = map[models.Action]string{
	models.ActionBuy:  "Recommended for purchase",
	models.ActionHold: "Hold position",
	models.ActionSell: "Consider selling",
}

// Summary builds the one-line explanation shown next to a recommendation.
func Summary(action models.Action, signals *models.TechnicalSignals, fundamentalSupported bool, total float64) string {
	var b strings.Builder
	b.WriteString(actionText[action])

	if signals != nil {
		switch {
		case signals.RSI == models.SignalOversold:
			b.WriteString(" (RSI oversold)")
		case signals.Trend == models.TrendUp:
			b.WriteString(" (bullish trend)")
		}
	}

	if fundamentalSupported {
		b.WriteString(" with fundamental analysis")
	} else {
		b.WriteString(" (limited fundamental analysis)")
	}

	fmt.Fprintf(&b, " - Score: %.1f/100", total)
	return b.String()
}

// NeutralSummary is used when a ticker could not be analyzed.
func NeutralSummary(ticker string) string {
	return fmt.Sprintf("Error analyzing %s - neutral recommendation", ticker)
}
