// greenchat - WhatsApp chat in the terminal through the Green-API gateway.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/greenchat-tui/internal/cli"
	"github.com/jeranaias/greenchat-tui/internal/config"
	"github.com/jeranaias/greenchat-tui/internal/i18n"
	"github.com/jeranaias/greenchat-tui/internal/inbox"
	"github.com/jeranaias/greenchat-tui/internal/onboarding"
	"github.com/jeranaias/greenchat-tui/internal/session"
	"github.com/jeranaias/greenchat-tui/internal/ui/app"
	"github.com/jeranaias/greenchat-tui/internal/ui/chat"
	"github.com/jeranaias/greenchat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	switch cmd {
	case cli.CmdHelp:
		exit(cli.HandleHelp(os.Stdout))
		return
	case cli.CmdVersion:
		exit(cli.HandleVersion(os.Stdout, args))
		return
	case cli.CmdUnknown:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args.Name)
		cli.PrintUsage(os.Stderr)
		os.Exit(cli.ExitUsageError)
	}

	env, err := cli.NewEnv(args)
	if err != nil {
		exit(err)
		return
	}
	defer env.Close()

	switch cmd {
	case cli.CmdLogin:
		err = cli.HandleLogin(env, args)
	case cli.CmdStatus:
		err = cli.HandleStatus(env, args)
	case cli.CmdSend:
		err = cli.HandleSend(env, args)
	case cli.CmdServe:
		err = cli.HandleServe(env, args)
	case cli.CmdConfig:
		err = cli.HandleConfig(env, args)
	default:
		err = runTUI(env, args)
	}
	if err != nil {
		env.Close()
		exit(err)
	}
}

func exit(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(cli.ExitCode(err))
}

// runTUI wires the gateway, session context, history and screens, then runs
// the Bubble Tea program.
func runTUI(env *cli.Env, args cli.Args) error {
	cfg := env.Config
	logger := env.Logger

	theme := styles.NewTheme(cfg.UI.Theme)
	client := env.Client()
	sessions := session.NewStore()
	seq := env.Sequencer(client, sessions)

	store, err := env.OpenHistory()
	if err != nil {
		// The chat still works without a local thread.
		logger.Warn("history disabled", "error", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	newChat := func(rec *session.Record, opts chat.Options) chat.Model {
		current := config.Global()

		var poller chat.Poller
		p, err := inbox.NewPoller(client, rec.Instance(), current.Chat.DedupeSize)
		if err != nil {
			logger.Warn("inbox disabled", "error", err)
		} else {
			poller = p.WithLogger(logger)
		}

		var hist chat.History
		if store != nil {
			hist = store
		}
		return chat.New(theme, i18n.New(current.UI.Language), rec, client, poller, hist, opts).
			WithLogger(logger)
	}

	m := app.New(app.Deps{
		Theme:    theme,
		Config:   cfg,
		Runner:   seq,
		Sessions: sessions,
		NewChat:  newChat,
		Prefill:  formPrefill(args),
		Logger:   logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.UI.WatchConfig {
		watchConfig(ctx, env, p)
	}

	logger.Info("greenchat started", "version", Version, "gateway", client.BaseURL())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// watchConfig forwards config file changes to the program.
func watchConfig(ctx context.Context, env *cli.Env, p *tea.Program) {
	path := env.ConfigPath
	if path == "" {
		def, err := config.ConfigPathTOML()
		if err != nil {
			return
		}
		if _, err := os.Stat(def); err != nil {
			return
		}
		path = def
	}

	err := config.Watch(ctx, path, config.DefaultDebounce, func(cfg *config.Config, err error) {
		if err == nil {
			config.SetGlobal(cfg)
		}
		p.Send(app.ConfigReloadedMsg{Config: cfg, Err: err})
	})
	if err != nil {
		env.Logger.Warn("config watch disabled", "error", err)
	}
}

func formPrefill(args cli.Args) onboarding.Form {
	return onboarding.Form{ID: args.ID, Token: args.Token, Phone: args.Phone}
}
