package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alejandrodnm/wxtrader/internal/domain"
	"github.com/alejandrodnm/wxtrader/internal/ports"
)

// Multi reparte cada notificación entre varios notifiers. Un fallo se
// loguea y no impide entregar al resto.
type Multi struct {
	sinks []ports.Notifier
}

// NewMulti ignora los notifiers nil.
func NewMulti(sinks ...ports.Notifier) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *Multi) each(what string, fn func(ports.Notifier) error) error {
	var errs []error
	for _, s := range m.sinks {
		if err := fn(s); err != nil {
			slog.Warn("notify: delivery failed", "what", what, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) NotifyRun(ctx context.Context, r domain.RunReport) error {
	return m.each("run", func(n ports.Notifier) error { return n.NotifyRun(ctx, r) })
}

func (m *Multi) NotifySettlements(ctx context.Context, r domain.SettlementReport) error {
	return m.each("settlements", func(n ports.Notifier) error { return n.NotifySettlements(ctx, r) })
}

func (m *Multi) NotifyError(ctx context.Context, msg string, err error) error {
	return m.each("error", func(n ports.Notifier) error { return n.NotifyError(ctx, msg, err) })
}
