// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/jeranaias/greenchat-tui/internal/server"
)

// HandleServe runs the webhook receiver until interrupted. Received messages
// are stored in the history database.
func HandleServe(env *Env, args Args) error {
	cfg := env.Config.Webhook
	if args.Addr != "" {
		cfg.Addr = args.Addr
	}

	store, err := env.OpenHistory()
	if err != nil {
		return &CommandError{Command: "serve", Err: err}
	}
	if store == nil {
		return usageErr("serve", "chat.history_enabled is off; nothing would store received messages")
	}
	defer store.Close()

	srv, err := server.New(cfg, store, env.Logger)
	if err != nil {
		return &CommandError{Command: "serve", Err: err}
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("%s listening on %s\n", RenderStatus("ok"), srv.Addr())
	if cfg.Token == "" {
		fmt.Println(WarningStyle.Render("webhook.token is empty; POST /webhook accepts unauthenticated requests"))
	}
	if err := srv.Run(ctx); err != nil {
		return &CommandError{Command: "serve", Err: err}
	}
	return nil
}
