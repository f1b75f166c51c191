package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/phrazzld/studyquest/internal/config"
	"github.com/phrazzld/studyquest/internal/platform/clock"
	"github.com/phrazzld/studyquest/internal/platform/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// cli carries state shared by the subcommands of one invocation.
type cli struct {
	fs         afero.Fs
	clock      clock.Clock
	configFile string
	envFile    string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(fsys afero.Fs) *cobra.Command {
	c := &cli{fs: fsys, clock: clock.System{}}
	return c.rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "studyquest",
		Short:         "Local flashcard scheduling with XP, streaks and badges",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: ./studyquest.yaml or $HOME/.studyquest/studyquest.yaml)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before configuration")

	root.AddCommand(
		c.serveCmd(),
		c.statsCmd(),
		c.dueCmd(),
		c.heartsCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.resetCmd(),
		c.migrateCmd(),
	)
	return root
}

// setup loads the dotenv file, configuration and logger.
func (c *cli) setup(cmd *cobra.Command) error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", c.envFile, err)
		}
	}

	cfg, err := config.Load(c.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.SetupWithWriter(cfg.Server, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	c.cfg = cfg
	c.logger = log
	log.Debug("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("strategy", cfg.Scheduler.Strategy))
	return nil
}

// withApp opens the application for the duration of fn.
func (c *cli) withApp(ctx context.Context, fn func(ctx context.Context, app *application) error) error {
	app, err := newApplication(ctx, c.cfg, c.fs, c.clock, c.logger)
	if err != nil {
		return err
	}
	defer app.cleanup()
	return fn(ctx, app)
}
