package models

// Requests for the recommendation HTTP endpoints.

type TickerRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,ticker"`
}

type DailyRequest struct {
	Action  string `query:"action" json:"action" validate:"omitempty,oneof=BUY HOLD SELL"`
	Limit   int    `query:"limit" json:"limit" default:"0" validate:"gte=0,lte=100"`
	Refresh bool   `query:"refresh" json:"refresh"`
}
