package audit

import (
	"context"
	"log/slog"

	"mysafepocket/pkg/platform/circuit"
)

// ResilientStore writes to a primary sink and diverts events to a fallback
// sink once the primary has failed repeatedly. The primary is still tried on
// every event so the circuit can close again.
type ResilientStore struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

// NewResilientStore wraps primary with circuit breaker protection.
func NewResilientStore(primary, fallback Store, breaker *circuit.Breaker, logger *slog.Logger) *ResilientStore {
	if breaker == nil {
		breaker = circuit.New("audit_sink")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResilientStore{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (s *ResilientStore) Append(ctx context.Context, event Event) error {
	err := s.primary.Append(ctx, event)
	useFallback, tr := s.breaker.Observe(err == nil)
	switch tr {
	case circuit.TransitionOpened:
		s.logger.ErrorContext(ctx, "audit circuit opened", "circuit", s.breaker.Name(), "error", err)
	case circuit.TransitionClosed:
		s.logger.InfoContext(ctx, "audit circuit closed", "circuit", s.breaker.Name())
	}
	if err == nil {
		return nil
	}
	if !useFallback {
		return err
	}
	s.logger.WarnContext(ctx, "audit sink unavailable, using fallback",
		"circuit", s.breaker.Name(),
		"action", event.Action,
		"pocket_id", event.PocketID,
	)
	return s.fallback.Append(ctx, event)
}
