package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/rcarmo/uomul/internal/config"
	"github.com/rcarmo/uomul/internal/logging"
)

const (
	appName    = "uomul"
	appVersion = "v0.3.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).command().Run(ctx, os.Args); err != nil {
		logging.Error("%v", err)
		os.Exit(1)
	}
}

// app carries state shared by the commands of one invocation.
type app struct {
	out     io.Writer
	cfg     *config.Config
	logFile io.Closer
}

func newApp(out io.Writer) *app {
	return &app{out: out}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:    appName,
		Usage:   "read, export and serve Ultima Online client data files",
		Version: appVersion,
		Writer:  a.out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file"},
			&cli.StringFlag{Name: "data-dir", Aliases: []string{"d"}, Usage: "directory holding the client files"},
			&cli.StringFlag{Name: "log-level", Usage: "log level (debug, info, warn, error)"},
		},
		Before: a.before,
		After: func(ctx context.Context, cmd *cli.Command) error {
			if a.logFile != nil {
				return a.logFile.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			a.infoCommand(),
			a.exportCommand(),
			a.radarCommand(),
			a.appendCommand(),
			a.skillsCommand(),
			a.tiledataCommand(),
			a.serveCommand(),
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.LoadWithOverrides(config.LoadOptions{
		ConfigFile: cmd.String("config"),
		DataDir:    cmd.String("data-dir"),
		LogLevel:   cmd.String("log-level"),
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	closer, err := setupLogging(cfg.Logging)
	if err != nil {
		return ctx, err
	}
	a.logFile = closer
	return ctx, nil
}

// setupLogging applies the logging configuration to the default logger. The
// returned closer is non-nil when logs go to a file.
func setupLogging(cfg config.LoggingConfig) (io.Closer, error) {
	logging.SetLevelFromString(cfg.Level)
	logging.SetFormat(cfg.Format)

	if cfg.File == "" {
		logging.SetOutput(os.Stderr)
		return nil, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logging.SetOutput(f)
	return f, nil
}
