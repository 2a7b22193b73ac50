package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/samalsubrat/mk-price-tracker/config"
	"github.com/samalsubrat/mk-price-tracker/internal/app"
	logx "github.com/samalsubrat/mk-price-tracker/pkg/logger"
)

type appKey struct{}

// Loader builds the application for a command run
type Loader func(ctx context.Context) (*app.App, error)

// DefaultLoader loads configuration from the environment and wires the app
func DefaultLoader(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}

// NewRootCmd creates the mkprice-cli command tree
func NewRootCmd(load Loader) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "mkprice-cli",
		Short:         "mkprice-cli aggregates keyboard listings across vendors and inspects the catalog.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logx.Init(logx.LoggerOpts{
				Environment: logx.Production,
				Debug:       verbose,
				Output:      cmd.ErrOrStderr(),
			})

			application, err := load(cmd.Context())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, application))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return appFrom(cmd).Close()
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newRefreshCmd(),
		newGroupsCmd(),
		newShowCmd(),
		newDupesCmd(),
		newCanonCmd(),
	)

	return root
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	root := NewRootCmd(DefaultLoader)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func appFrom(cmd *cobra.Command) *app.App {
	return cmd.Context().Value(appKey{}).(*app.App)
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}
