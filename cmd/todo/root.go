package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/alloc"
	"github.com/idilsaglam/tada/internal/cli"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/ui"
)

var (
	configPath string
	storeFlag  string
	themeFlag  string
	noColor    bool
	verbose    bool

	app      *cli.App
	closeApp = func() error { return nil }
)

// exitCode carries a subcommand's exit status through cobra.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit %d", int(e)) }

// usageError marks bad flags or arguments; they exit with cli.ExitUsage.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func result(code int) error {
	if code == cli.ExitOK {
		return nil
	}
	return exitCode(code)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "A tiny todo CLI with sequential ids",
	Long: `todo keeps a list of items in todos.json. Every new item gets the next id;
the last id is kept in a session store so numbering survives restarts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SetOut(ui.Stderr)
		_ = cmd.Help()
		return exitCode(cli.ExitUsage)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, config.Overrides{Store: storeFlag, Theme: themeFlag})
		if err != nil {
			return err
		}
		log := cli.NewLogger(cfg.LogLevel, verbose)
		a, closeFn, err := cli.Open(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		if noColor {
			ui.DisableColor()
		}
		app, closeApp = a, closeFn
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <text...>",
	Short: "Add a new item (text can be multiple words)",
	Args:  usageArgs(cobra.MinimumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		var done *bool
		if cmd.Flags().Changed("done") {
			v, _ := cmd.Flags().GetBool("done")
			done = alloc.Bool(v)
		}
		return result(app.Add(cmd.Context(), strings.Join(args, " "), done))
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List items",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetBool("group")
		return result(app.List(cli.Options{Group: group}))
	},
}

func idCommand(use, short string, fn func(id int64) int) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cli.ParseID(args[0])
			if err != nil {
				ui.Fail(use + ": " + err.Error())
				return exitCode(cli.ExitUsage)
			}
			return result(fn(id))
		},
	}
}

var seqCmd = &cobra.Command{
	Use:   "seq",
	Short: "Show the last allocated id",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return result(app.Seq())
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive list",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return result(app.Interactive(cmd.Context()))
	},
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.ExecuteContext(context.Background())
	if cerr := closeApp(); cerr != nil && err == nil {
		err = cerr
	}
	closeApp = func() error { return nil }
	if err == nil {
		return cli.ExitOK
	}
	var code exitCode
	if errors.As(err, &code) {
		return int(code)
	}
	ui.Fail(err.Error())
	var usage usageError
	if errors.As(err, &usage) {
		return cli.ExitUsage
	}
	return cli.ExitError
}

func init() {
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.tada/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "session store: none, memory, file, sqlite, redis")
	rootCmd.PersistentFlags().StringVar(&themeFlag, "theme", "", "classic, neon or mono")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colours")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	addCmd.Flags().BoolP("done", "d", false, "create the item already done")
	lsCmd.Flags().BoolP("group", "g", false, "group output by pending/done")

	rootCmd.AddCommand(
		addCmd,
		lsCmd,
		idCommand("done", "Toggle done for the item with this id", func(id int64) int { return app.Toggle(id) }),
		idCommand("rm", "Remove the item with this id", func(id int64) int { return app.Remove(id) }),
		seqCmd,
		tuiCmd,
	)
}
