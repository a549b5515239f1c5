package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/codenotes/internal/app"
	"github.com/and161185/codenotes/internal/config"
	"github.com/and161185/codenotes/internal/logger"
	"github.com/and161185/codenotes/internal/notify"
)

type cli struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	configPath string
	log        *zap.Logger
	app        *app.App
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "codenotes",
		Short: "Keep short notes and code snippets, tagged by language",
		Long: `codenotes stores notes with a title, a description, a code snippet,
a language label and free-form tags. Data stays on this machine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/codenotes/config.yaml)")

	root.AddCommand(
		c.registerCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.addCmd(),
		c.editCmd(),
		c.rmCmd(),
		c.showCmd(),
		c.listCmd(),
		c.languagesCmd(),
		c.versionCmd(),
	)
	return root
}

// application loads config and opens storage on first use.
func (c *cli) application(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.log = logger.Must(cfg.Log.Level, logger.ParseEnvironment(cfg.Log.Mode))

	bus := notify.NewBus()
	bus.Subscribe(c.toast)

	a, err := app.New(ctx, cfg, bus, c.log)
	if err != nil {
		return nil, err
	}
	c.log.Debug("storage opened", zap.String("driver", cfg.Storage.Driver))
	c.app = a
	return a, nil
}

func (c *cli) toast(ev notify.Event) {
	mark := "ok"
	if ev.Level == notify.Error {
		mark = "!!"
	}
	fmt.Fprintf(c.stderr, "[%s] %s: %s\n", mark, ev.Title, ev.Description)
}

func (c *cli) close() {
	if c.app != nil {
		if err := c.app.Close(); err != nil {
			c.log.Warn("close storage", zap.Error(err))
		}
	}
	if c.log != nil {
		_ = c.log.Sync()
	}
}
