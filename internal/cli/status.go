// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jeranaias/greenchat-tui/internal/gateway"
	"github.com/jeranaias/greenchat-tui/internal/onboarding"
)

// StatusGateway is the part of the gateway client used by status and send.
type StatusGateway interface {
	GetStateInstance(ctx context.Context, inst gateway.Instance) (gateway.State, error)
	GetSettings(ctx context.Context, inst gateway.Instance) (*gateway.Settings, error)
	SendMessage(ctx context.Context, inst gateway.Instance, phone, text string) (string, error)
}

// StatusReport is the JSON form of `greenchat status`.
type StatusReport struct {
	Instance   string            `json:"instance"`
	State      gateway.State     `json:"state"`
	Authorized bool              `json:"authorized"`
	Settings   *gateway.Settings `json:"settings,omitempty"`
	Gateway    string            `json:"gateway"`
}

// SendResult is the JSON form of `greenchat send`.
type SendResult struct {
	ChatID    string `json:"chat_id"`
	MessageID string `json:"message_id"`
}

func instanceFrom(cmd string, args Args) (gateway.Instance, error) {
	if args.ID == "" || args.Token == "" {
		return gateway.Instance{}, usageErr(cmd, "--id and --token are required (or GREENCHAT_INSTANCE_ID and GREENCHAT_API_TOKEN)")
	}
	return gateway.Instance{ID: args.ID, Token: args.Token}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// =============================================================================
// STATUS
// =============================================================================

// HandleStatus prints the instance state and settings.
func HandleStatus(env *Env, args Args) error {
	inst, err := instanceFrom("status", args)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	client := env.Client()
	return runStatus(ctx, os.Stdout, client, client.BaseURL(), inst, args.JSON)
}

func runStatus(ctx context.Context, w io.Writer, gw StatusGateway, baseURL string, inst gateway.Instance, asJSON bool) error {
	state, err := gw.GetStateInstance(ctx, inst)
	if err != nil {
		return &CommandError{Command: "status", Err: err}
	}
	report := StatusReport{
		Instance:   inst.ID,
		State:      state,
		Authorized: state.Authorized(),
		Gateway:    baseURL,
	}
	// Settings are informational; a failure here does not fail the command.
	if settings, err := gw.GetSettings(ctx, inst); err == nil {
		report.Settings = settings
	}

	if asJSON {
		return writeJSON(w, report)
	}

	fmt.Fprintln(w, TitleStyle.Render("greenchat status"))
	fmt.Fprintln(w, RenderField("Gateway", report.Gateway))
	fmt.Fprintln(w, RenderField("Instance", inst.String()))
	fmt.Fprintln(w, RenderField("State", string(state))+" "+RenderStatus(strings.ToLower(string(state))))
	if s := report.Settings; s != nil {
		if s.Wid != "" {
			fmt.Fprintln(w, RenderField("Account", gateway.Phone(s.Wid)))
		}
		fmt.Fprintln(w, RenderField("Webhook URL", orDash(s.WebhookURL)))
		fmt.Fprintln(w, RenderField("Send delay", fmt.Sprintf("%d ms", s.DelaySendMessagesMilliseconds)))
		fmt.Fprintln(w, RenderField("Incoming hook", orDash(s.IncomingWebhook)))
		fmt.Fprintln(w, RenderField("Outgoing hook", orDash(s.OutgoingAPIMessageWebhook)))
		fmt.Fprintln(w, RenderField("State hook", orDash(s.StateWebhook)))
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// =============================================================================
// SEND
// =============================================================================

// HandleSend sends one text message to --phone.
func HandleSend(env *Env, args Args) error {
	inst, err := instanceFrom("send", args)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	return runSend(ctx, os.Stdout, env.Client(), inst, args)
}

func runSend(ctx context.Context, w io.Writer, gw StatusGateway, inst gateway.Instance, args Args) error {
	form := onboarding.Form{ID: inst.ID, Token: inst.Token, Phone: args.Phone}.Normalize()
	if _, ok := form.ValidateField(onboarding.FieldPhone); !ok {
		return usageErr("send", "--phone must be digits only, got %q", args.Phone)
	}
	text := strings.TrimSpace(args.Text)
	if text == "" {
		return usageErr("send", "message text is required")
	}

	id, err := gw.SendMessage(ctx, inst, form.Phone, text)
	if err != nil {
		return &CommandError{Command: "send", Err: err}
	}

	res := SendResult{ChatID: gateway.ChatID(form.Phone), MessageID: id}
	if args.JSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "%s %s %s\n", RenderStatus("ok"), res.ChatID, DimStyle.Render(res.MessageID))
	return nil
}
