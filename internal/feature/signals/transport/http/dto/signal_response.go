// Package dto defines the HTTP payloads of the signals feature.
package dto

import "pattern_scanner/internal/feature/signals/domain/entity"

// PatternResponse is a detected formation without its candles.
type PatternResponse struct {
	Pattern               string   `json:"pattern"`
	Time                  string   `json:"time"`
	Confidence            float64  `json:"confidence"`
	Description           string   `json:"description"`
	PriceAtDetection      float64  `json:"price_at_detection"`
	SupportLevel          *float64 `json:"support_level,omitempty"`
	ResistanceLevel       *float64 `json:"resistance_level,omitempty"`
	HasVolumeConfirmation bool     `json:"has_volume_confirmation"`
}

// ScanResponse is the body of an on-demand scan.
type ScanResponse struct {
	Symbol          string               `json:"symbol"`
	Date            string               `json:"date"`
	IntervalMinutes int                  `json:"interval_minutes"`
	Patterns        []PatternResponse    `json:"patterns"`
	Signals         []entity.EntrySignal `json:"signals"`
}

// ErrorResponse is the JSON body returned on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
