package runner

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Runner groups the long-running loops of a command and waits for the
// first one to fail.
type Runner struct {
	g   *errgroup.Group
	ctx context.Context
}

func New(ctx context.Context) *Runner {
	g, gctx := errgroup.WithContext(ctx)

	return &Runner{
		g:   g,
		ctx: gctx,
	}
}

// Context is done once any grouped function returns an error.
func (r *Runner) Context() context.Context {
	return r.ctx
}

func (r *Runner) Go(f func() error) {
	r.g.Go(f)
}

func (r *Runner) Wait() error {
	return r.g.Wait()
}
