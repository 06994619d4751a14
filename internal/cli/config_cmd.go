// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/greenchat-tui/internal/config"
)

// HandleConfig implements `greenchat config [show|get|set|path|keys]`.
func HandleConfig(env *Env, args Args) error {
	return runConfig(os.Stdout, env, args)
}

func runConfig(w io.Writer, env *Env, args Args) error {
	cfg := env.Config

	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			return writeJSON(w, redacted(cfg))
		}
		fmt.Fprintln(w, cfg.String())
		return nil

	case "get":
		if args.ConfigKey == "" {
			return usageErr("config get", "key is required, see `greenchat config keys`")
		}
		v, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return usageErr("config get", "%v", err)
		}
		if args.ConfigKey == "webhook.token" && v != "" {
			v = "********"
		}
		if args.JSON {
			return writeJSON(w, map[string]any{args.ConfigKey: v})
		}
		fmt.Fprintln(w, v)
		return nil

	case "set":
		if args.ConfigKey == "" {
			return usageErr("config set", "usage: greenchat config set KEY VALUE")
		}
		next := cfg.Clone()
		if err := next.Set(args.ConfigKey, args.ConfigVal); err != nil {
			return usageErr("config set", "%v", err)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		path, err := saveConfig(next, env.ConfigPath)
		if err != nil {
			return &CommandError{Command: "config set", Err: err}
		}
		*cfg = *next
		fmt.Fprintf(w, "%s %s saved to %s\n", RenderStatus("ok"), args.ConfigKey, path)
		return nil

	case "path":
		path := env.ConfigPath
		if path == "" {
			p, err := config.ConfigPathTOML()
			if err != nil {
				return err
			}
			path = p
		}
		fmt.Fprintln(w, path)
		return nil

	case "keys":
		fmt.Fprintln(w, strings.Join(config.GetAllKeys(), "\n"))
		return nil
	}
	return usageErr("config", "unknown subcommand %q (show, get, set, path, keys)", args.Subcommand)
}

func saveConfig(cfg *config.Config, path string) (string, error) {
	switch {
	case path == "":
		p, err := config.ConfigPathTOML()
		if err != nil {
			return "", err
		}
		return p, config.Save(cfg)
	case strings.HasSuffix(path, ".json"):
		return path, config.SaveJSON(cfg, path)
	default:
		return path, config.SaveTOML(cfg, path)
	}
}

func redacted(cfg *config.Config) *config.Config {
	out := cfg.Clone()
	if out.Webhook.Token != "" {
		out.Webhook.Token = "********"
	}
	return out
}
