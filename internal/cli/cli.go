// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Version information, set from main.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the command selected on the command line.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdStatus
	CmdSend
	CmdServe
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// Args holds parsed arguments.
type Args struct {
	// Global flags
	ConfigPath string
	Verbose    bool
	JSON       bool

	// Instance addressing for login, status and send. Empty values fall back
	// to GREENCHAT_INSTANCE_ID and GREENCHAT_API_TOKEN.
	ID    string
	Token string
	Phone string

	Text       string // send
	Addr       string // serve
	Subcommand string // config
	ConfigKey  string
	ConfigVal  string

	// Name is the word that selected the command, kept for error messages.
	Name string
}

var boolFlags = []string{"json", "verbose", "v", "help", "h", "version"}

// Parse parses argv (without the program name).
func Parse(argv []string) (Command, Args) {
	p := NewArgParser(argv, boolFlags...)

	args := Args{
		ConfigPath: p.Flag("config", "c"),
		Verbose:    p.BoolFlag("verbose", "v"),
		JSON:       p.BoolFlag("json"),
		ID:         firstNonEmpty(p.Flag("id"), os.Getenv("GREENCHAT_INSTANCE_ID")),
		Token:      firstNonEmpty(p.Flag("token"), os.Getenv("GREENCHAT_API_TOKEN")),
		Phone:      p.Flag("phone", "p"),
		Addr:       p.Flag("addr"),
	}

	if p.BoolFlag("version") {
		return CmdVersion, args
	}
	if p.BoolFlag("help", "h") {
		return CmdHelp, args
	}

	args.Name = strings.ToLower(p.Positional(0))
	rest := p.PositionalFrom(1)

	switch args.Name {
	case "", "tui":
		return CmdTUI, args
	case "login":
		return CmdLogin, args
	case "status", "s":
		return CmdStatus, args
	case "send":
		args.Text = strings.Join(rest, " ")
		return CmdSend, args
	case "serve":
		return CmdServe, args
	case "config":
		if len(rest) > 0 {
			args.Subcommand = strings.ToLower(rest[0])
		}
		if len(rest) > 1 {
			args.ConfigKey = rest[1]
		}
		if len(rest) > 2 {
			args.ConfigVal = strings.Join(rest[2:], " ")
		}
		return CmdConfig, args
	case "version":
		return CmdVersion, args
	case "help":
		return CmdHelp, args
	default:
		return CmdUnknown, args
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// =============================================================================
// HELP AND VERSION
// =============================================================================

const usageText = `greenchat - WhatsApp chat in the terminal through the Green-API gateway

Usage:
  greenchat                       Start the terminal UI (default)
  greenchat login                 Run the onboarding handshake from prompts
  greenchat status                Show the instance state and settings
  greenchat send "text"           Send one message to --phone
  greenchat serve                 Run the webhook receiver
  greenchat config [show|get|set|path]
  greenchat version               Show version information
  greenchat help                  Show this help

Flags:
  --id ID          Instance id (or GREENCHAT_INSTANCE_ID)
  --token TOKEN    API token (or GREENCHAT_API_TOKEN)
  --phone PHONE    Contact number, digits only
  --addr ADDR      Listen address for serve (default from webhook.addr)
  --config FILE    Use FILE instead of ~/.greenchat/config.toml
  --json           Machine-readable output for status, send and config
  -v, --verbose    Log to stderr at debug level
`

const helpMarkdown = "# greenchat\n\n" +
	"Chat through a **Green-API** WhatsApp instance from the terminal.\n\n" +
	"## Getting started\n\n" +
	"1. Register and create an instance at " + "https://console.green-api.com/auth/register\n" +
	"2. Run `greenchat` and fill in the instance id, the API token and the phone number of a contact.\n" +
	"3. On submit greenchat checks the credentials, sends a probe message to the contact, " +
	"waits for its receipt and enables the webhooks it needs.\n\n" +
	"## Keys\n\n" +
	"| Screen | Key | Action |\n|---|---|---|\n" +
	"| form | `tab` / `shift+tab` | move between fields |\n" +
	"| form | `enter` | next field or submit |\n" +
	"| form | `esc` | cancel a running login, dismiss the banner |\n" +
	"| chat | `enter` | send |\n" +
	"| chat | `pgup` / `pgdown` | scroll |\n" +
	"| chat | `ctrl+l` | log out |\n" +
	"| any | `ctrl+c` | quit |\n\n" +
	"## Configuration\n\n" +
	"Settings live in `~/.greenchat/config.toml`. Use `greenchat config show` to print them " +
	"and `greenchat config set chat.poll_interval_ms 2000` to change one. " +
	"The UI picks up theme, timestamp and polling changes without a restart.\n"

// PrintUsage writes the plain usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// HandleHelp renders the help page. Markdown is rendered only on a terminal.
func HandleHelp(w io.Writer) error {
	if !IsStdoutTTY() {
		PrintUsage(w)
		return nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(GetTerminalWidth(), 100)),
	)
	if err != nil {
		PrintUsage(w)
		return nil
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		PrintUsage(w)
		return nil
	}
	fmt.Fprint(w, out)
	PrintUsage(w)
	return nil
}

// VersionInfo is the JSON form of `greenchat version`.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// HandleVersion prints version information.
func HandleVersion(w io.Writer, args Args) error {
	info := VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if args.JSON {
		return writeJSON(w, info)
	}
	fmt.Fprintf(w, "greenchat %s\n", info.Version)
	fmt.Fprintf(w, "  Commit:   %s\n", info.GitCommit)
	fmt.Fprintf(w, "  Built:    %s\n", info.BuildDate)
	fmt.Fprintf(w, "  Go:       %s\n", info.GoVersion)
	fmt.Fprintf(w, "  Platform: %s\n", info.Platform)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
