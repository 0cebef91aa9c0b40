// Package nats はNATS接続と署名配信用ストリームの初期化を提供します。
package nats

import (
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	StreamName     = "SIGNALS"
	StreamSubjects = "signals.>"
)

// Connect はNATSへ接続します。切断・再接続はslogに記録します。
func Connect(url, name string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name(name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
}

// EnsureStream creates the SIGNALS stream so published signals are retained.
// Servers without JetStream are tolerated: plain publish still works.
func EnsureStream(nc *nats.Conn, maxAge time.Duration) error {
	js, err := nc.JetStream()
	if err != nil {
		return err
	}
	cfg := &nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{StreamSubjects},
		MaxAge:   maxAge,
	}
	if _, err := js.AddStream(cfg); err != nil {
		if errors.Is(err, nats.ErrJetStreamNotEnabled) {
			slog.Warn("jetstream not enabled, signals are not retained")
			return nil
		}
		if _, uerr := js.UpdateStream(cfg); uerr != nil {
			return uerr
		}
	}
	return nil
}
