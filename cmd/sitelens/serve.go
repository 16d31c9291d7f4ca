package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fwojciec/sitelens/gin"
	"golang.org/x/sync/errgroup"
)

// Run executes the serve command. It blocks until the context is canceled
// or the process receives SIGINT or SIGTERM.
func (c *ServeCmd) Run(deps *Dependencies) error {
	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := deps.Dispatcher.Reload(ctx)
	if err != nil {
		return fail(deps, err)
	}
	deps.Dispatcher.Start()

	server := gin.NewServer()
	server.Addr = c.Addr
	server.Tasks = deps.Tasks
	server.Runner = deps.Runner
	server.Scheduler = deps.Dispatcher
	server.Asker = deps.Asker
	if deps.Logger != nil {
		server.Logger = deps.Logger
	}

	if err := server.Open(); err != nil {
		_ = deps.Dispatcher.Stop(context.Background())
		return fail(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "Serving on %s (%d scheduled task(s))\n", server.URL(), n)

	<-ctx.Done()

	var g errgroup.Group
	g.Go(server.Close)
	g.Go(func() error {
		stopCtx, cancel := context.WithTimeout(context.Background(), gin.ShutdownTimeout)
		defer cancel()
		return deps.Dispatcher.Stop(stopCtx)
	})
	return g.Wait()
}
