package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pattern_scanner/internal/feature/signals/domain/entity"
	"pattern_scanner/internal/feature/signals/usecase"
)

// SubjectPrefix is the NATS subject namespace for accepted signals.
const SubjectPrefix = "signals."

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subj string, data []byte) error
}

// NATSPublisher publishes each accepted signal as JSON on signals.<SYMBOL>.
type NATSPublisher struct {
	nc Conn
}

var _ usecase.SignalPublisher = (*NATSPublisher)(nil)

func NewNATSPublisher(nc Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) Publish(ctx context.Context, s entity.EntrySignal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}
	return p.nc.Publish(Subject(s.Symbol), b)
}

// Subject returns the subject for symbol.
func Subject(symbol string) string {
	return SubjectPrefix + strings.ToUpper(strings.ReplaceAll(symbol, ".", "_"))
}
