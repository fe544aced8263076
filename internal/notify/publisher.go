package notify

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/domain"
)

// Publisher delivers order events. Implementations must not block on slow
// consumers.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

var (
	_ Publisher = (*Hub)(nil)
	_ Publisher = Fanout(nil)
	_ Publisher = Discard{}
)

// Fanout publishes to every target and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			slog.Warn("event publish failed", "event", event.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, domain.Event) error { return nil }
