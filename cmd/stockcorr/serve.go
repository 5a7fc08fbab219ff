package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/google/subcommands"

	"stockCorrelation/internal/server"
	"stockCorrelation/internal/telegram"
)

// serveCmd implements the "serve" command.
type serveCmd struct {
	configPath string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serves the interactive analysis form over HTTP" }
func (*serveCmd) Usage() string {
	return `serve [-config config.yaml]

Starts the web form. Every submission re-runs the full analysis for the
entered tickers, dates, weights and initial investment. When telegram.bot_token
and telegram.webhook_url are configured, /analyze chat commands are answered
on /telegram/webhook as well.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "config.yaml", "path to the YAML configuration file (optional)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := setup(c.configPath)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defaults, err := cfg.Params()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	src := newSource(cfg, log)

	var webhook http.HandlerFunc
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.WebhookURL, telegram.HandlerOptions{
			Source:   src,
			Defaults: defaults,
			Charts:   chartOptions(cfg),
			Log:      log,
		})
		if err != nil {
			log.Error().Err(err).Msg("telegram init failed")
			return subcommands.ExitFailure
		}
		webhook = bot.WebhookHandler
	}

	srv := server.New(server.Config{
		Port:     cfg.Server.Port,
		Log:      log,
		Source:   src,
		Defaults: defaults,
		Charts:   chartOptions(cfg),
		Webhook:  webhook,

		CORSOrigins: cfg.Server.CORSOrigins,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if err != nil {
			log.Error().Err(err).Msg("server error")
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
