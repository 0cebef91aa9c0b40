// Package dto defines the HTTP payloads of the candles feature.
package dto

// CandleResponse はロウソク足データのレスポンスDTOです。
type CandleResponse struct {
	Time   string  `json:"time"` // RFC3339, UTC bucket start
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// ErrorResponse is the JSON body returned on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
