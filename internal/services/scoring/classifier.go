package scoring

import "RecoPulse/internal/domain/models"

// Classify maps a total score to an action. Both bounds are inclusive.
func Classify(total float64, th models.Thresholds) models.Action {
	switch {
	case total >= th.BuyMin:
		return models.ActionBuy
	case total >= th.HoldMin:
		return models.ActionHold
	default:
		return models.ActionSell
	}
}

// ColorFor returns the display color of an action.
func ColorFor(a models.Action) models.Color {
	switch a {
	case models.ActionBuy:
		return models.ColorGreen
	case models.ActionSell:
		return models.ColorRed
	default:
		return models.ColorYellow
	}
}
