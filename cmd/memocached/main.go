// Package main is the entry point for the memocached greeting server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/unkn0wn-root/memocache/cmd/memocached/commands"
	"github.com/unkn0wn-root/memocache/internal/app"
	"github.com/unkn0wn-root/memocache/internal/config"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, serve))
}

func serve(ctx context.Context, cfg config.Config, logOut io.Writer) error {
	a, err := app.New(cfg, logOut)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, s commands.ServeFunc) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli := commands.New(s)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	return 0
}
