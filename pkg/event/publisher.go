package event

import (
	"context"
	"errors"
)

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Publishers publishes every event to all of its publishers. A failing publisher does not keep the
// event from the others.
type Publishers []Publisher

func (p Publishers) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, publisher := range p {
		if err := publisher.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
