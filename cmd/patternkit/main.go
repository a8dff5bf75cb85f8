// Package main is the entry point for the patternkit command.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/patternkit/internal/app"
	"github.com/dshills/patternkit/internal/engine"
	"github.com/dshills/patternkit/internal/player"
	"github.com/dshills/patternkit/internal/renderer"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "patternkit",
		Short: "Command and State pattern playground",
		Long: `patternkit replays editor edits with undo and redo (the Command pattern)
and drives a media player state machine (the State pattern).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	newApp := func(cmd *cobra.Command) (*app.Application, error) {
		return app.New(app.Options{
			ConfigPath: flags.configPath,
			LogLevel:   flags.logLevel,
			Out:        cmd.OutOrStdout(),
			LogOutput:  cmd.ErrOrStderr(),
		})
	}

	root.AddCommand(
		newDemoCmd(newApp),
		newRunCmd(newApp),
		newConsoleCmd(newApp),
		newMetricsCmd(newApp),
		newVersionCmd(),
	)
	return root
}

type appFactory func(cmd *cobra.Command) (*app.Application, error)

func newDemoCmd(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Narrate the built-in editor and player scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return a.RunDemos(cmd.Context())
		},
	}
}

func newRunCmd(newApp appFactory) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "run <file.yaml|file.lua>",
		Short: "Run a YAML scenario or a Lua script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if watch {
				return a.Watch(cmd.Context(), args[0])
			}
			return a.RunFile(cmd.Context(), args[0])
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rerun the file whenever it changes")
	return cmd
}

func newConsoleCmd(newApp appFactory) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Interactive console for the editor and the player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("creating screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("initializing screen: %w", err)
			}
			defer screen.Fini()

			e, p := newConsoleSession(a, text)
			defer a.Metrics().ObservePlayer(p)()

			return renderer.NewConsole(screen, e, p).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Initial buffer text")
	return cmd
}

// newConsoleSession builds the engine and player driven by the console,
// sharing the application's logger, metrics and history limit.
func newConsoleSession(a *app.Application, text string) (*engine.Engine, *player.Player) {
	e := engine.New(
		engine.WithContent(text),
		engine.WithMaxUndoEntries(a.Config().History.MaxEntries),
		engine.WithRecorder(a.Metrics()),
		engine.WithLogger(a.Logger()),
	)
	p := player.New(player.WithLogger(a.Logger()))
	return e, p
}

func newMetricsCmd(newApp appFactory) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "metrics [file.yaml|file.lua]",
		Short: "Serve /metrics while running a file, or the demos when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if !a.Config().Metrics.Enabled {
				return app.ErrMetricsDisabled
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			serveErr := make(chan error, 1)
			go func() {
				serveErr <- a.ServeMetrics(ctx, listen)
			}()

			workErr := make(chan error, 1)
			go func() {
				if len(args) == 1 {
					workErr <- a.Watch(ctx, args[0])
					return
				}
				workErr <- a.RunDemos(ctx)
			}()

			// Keep serving after the work finishes until interrupted.
			for {
				select {
				case err := <-serveErr:
					cancel()
					return err
				case err := <-workErr:
					if err != nil {
						cancel()
						<-serveErr
						return err
					}
					workErr = nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from metrics.listen)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "patternkit %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}
}
