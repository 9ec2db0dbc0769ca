package action

import (
	"context"
	"log/slog"
	"time"

	"github.com/leapstack-labs/noticeboard/pkg/core"
)

// Dispatcher resolves action names, checks protection and invokes handlers.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over registry.
// If logger is nil, a discard logger is used.
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Registry returns the dispatcher's registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs the named action for rc. The handler's reply is returned
// untouched and its errors propagate to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, rc RequestContext, name, id string, in Input) (Reply, error) {
	a, ok := d.registry.Lookup(name)
	if !ok {
		d.logger.Debug("unknown action", slog.String("action", name))
		return Reply{}, core.UnknownAction(name)
	}
	if err := d.registry.IsAllowed(name, rc, id, nil); err != nil {
		d.logger.Info("action rejected",
			slog.String("action", name),
			slog.String("caller", rc.CallerID()),
			slog.String("kind", string(core.KindOf(err))))
		return Reply{}, err
	}

	if rc.Logger == nil {
		rc.Logger = d.logger
	}
	if in == nil {
		in = Input{}
	}

	start := time.Now()
	reply, err := a.Handler(ctx, rc, id, in)

	attrs := []any{
		slog.String("action", name),
		slog.String("caller", rc.CallerID()),
		slog.Duration("duration", time.Since(start)),
	}
	switch {
	case err != nil:
		d.logger.Info("action failed", append(attrs, slog.String("kind", string(core.KindOf(err))))...)
	case reply.Error != "":
		d.logger.Warn("action returned store error", append(attrs, slog.String("error", reply.Error))...)
	default:
		d.logger.Debug("action completed", attrs...)
	}
	return reply, err
}
