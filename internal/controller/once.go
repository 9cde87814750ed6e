package controller

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunOnce drives a fresh controller through a single submission: events are
// applied in order, then Submit. It returns the outcome, or ctx's error if
// ctx ends first. The view is not called after RunOnce returns.
func RunOnce(ctx context.Context, view View, analyzer Analyzer, opts *Options, events ...Event) (Outcome, error) {
	ctrl := New(view, analyzer, opts)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return ctrl.Run(gctx)
	})

	for _, ev := range events {
		ctrl.Dispatch(ev)
	}
	ctrl.Dispatch(Submit{})

	var (
		outcome Outcome
		err     error
	)
	select {
	case outcome = <-ctrl.Settled():
	case <-gctx.Done():
		err = ctx.Err()
		if err == nil {
			err = context.Cause(gctx)
		}
	}

	cancel()
	if runErr := g.Wait(); runErr != nil && !errors.Is(runErr, context.Canceled) {
		ctrl.logger.Warn("controller stopped", zap.Error(runErr))
	}

	return outcome, err
}
