// Package commands implements the memocached CLI.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/memocache/internal/config"
)

// Set via -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// ServeFunc runs the server with the resolved configuration until ctx is done.
// logOut is where non-zap log backends write.
type ServeFunc func(ctx context.Context, cfg config.Config, logOut io.Writer) error

type CLI struct {
	serve   ServeFunc
	rootCmd *cobra.Command
}

func New(serve ServeFunc) *CLI {
	rootCmd := &cobra.Command{
		Use:           "memocached",
		Short:         "Serve a slow greeting, computed once and memoized",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n", Commit, Date,
	))

	c := &CLI{serve: serve, rootCmd: rootCmd}
	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newVersionCmd())
	return c
}

func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
