// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/peterh/liner"

	"github.com/jeranaias/greenchat-tui/internal/i18n"
	"github.com/jeranaias/greenchat-tui/internal/onboarding"
	"github.com/jeranaias/greenchat-tui/internal/session"
	"github.com/jeranaias/greenchat-tui/internal/ui/onboard"
)

// Runner runs the onboarding handshake with a per-run observer.
type Runner interface {
	RunObserved(ctx context.Context, form onboarding.Form, observe onboarding.Observer) (*session.Record, error)
}

// HandleLogin runs the onboarding handshake without the UI. Missing values
// are prompted for; the token prompt does not echo.
func HandleLogin(env *Env, args Args) error {
	form := onboarding.Form{ID: args.ID, Token: args.Token, Phone: args.Phone}
	tr := i18n.New(env.Config.UI.Language)

	if form.ID == "" || form.Token == "" || form.Phone == "" {
		if err := RequiresTTY("log in"); err != nil {
			return err
		}
		var err error
		form, err = promptForm(tr, form)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seq := env.Sequencer(env.Client(), session.NewStore())
	rec, err := runLogin(ctx, os.Stdout, tr, seq, form)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(RenderStatus("ok") + " " + SuccessStyle.Render(tr.T(i18n.StepDone)))
	fmt.Println(RenderField("Instance", rec.Credentials.InstanceID))
	fmt.Println(RenderField("Contact", rec.Phone))
	fmt.Println(RenderField("Session", rec.ID.String()))
	if env.Config.Webhook.PublicURL == "" {
		fmt.Println(DimStyle.Render("Webhooks enabled; set webhook.public_url to have the gateway push them to `greenchat serve`."))
	}
	return nil
}

// promptForm asks for every empty field with liner.
func promptForm(tr i18n.Translator, form onboarding.Form) (onboarding.Form, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	ask := func(label string, current *string, secret bool) error {
		if *current != "" {
			return nil
		}
		prompt := label + ": "
		var (
			v   string
			err error
		)
		if secret {
			v, err = line.PasswordPrompt(prompt)
		} else {
			v, err = line.Prompt(prompt)
		}
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return context.Canceled
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", label, err)
		}
		*current = v
		return nil
	}

	fmt.Println(TitleStyle.Render(tr.T(i18n.FormTitle)))
	if err := ask(tr.T(i18n.FormID), &form.ID, false); err != nil {
		return form, err
	}
	if err := ask(tr.T(i18n.FormToken), &form.Token, true); err != nil {
		return form, err
	}
	if err := ask(tr.T(i18n.FormPhone), &form.Phone, false); err != nil {
		return form, err
	}
	return form, nil
}

// runLogin validates form and runs the handshake, printing each step to w.
// An invalid form never reaches the runner.
func runLogin(ctx context.Context, w io.Writer, tr i18n.Translator, runner Runner, form onboarding.Form) (*session.Record, error) {
	form = form.Normalize()
	if fe := form.Validate(); len(fe) > 0 {
		printFieldErrors(w, tr, fe)
		return nil, &onboarding.Error{Kind: onboarding.KindInvalidInput, Step: onboarding.StepValidate, Fields: fe, Err: fe}
	}

	rec, err := runner.RunObserved(ctx, form, func(s onboarding.Step) {
		fmt.Fprintf(w, "%s %s\n", DimStyle.Render("..."), onboard.StepLabel(tr, s))
	})
	if err == nil {
		return rec, nil
	}

	if oe, ok := onboarding.AsError(err); ok {
		if len(oe.Fields) > 0 {
			printFieldErrors(w, tr, oe.Fields)
		}
		switch oe.Kind {
		case onboarding.KindConnectivity:
			fmt.Fprintln(w, ErrorStyle.Render(tr.T(i18n.BannerOffline)))
		case onboarding.KindServer:
			fmt.Fprintln(w, ErrorStyle.Render(tr.Tf(i18n.BannerServer, oe.Err)))
		case onboarding.KindCanceled:
			fmt.Fprintln(w, WarningStyle.Render(tr.T(i18n.BannerCanceled)))
		}
	}
	return nil, err
}

func printFieldErrors(w io.Writer, tr i18n.Translator, fe onboarding.FieldErrors) {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, f := range fields {
		field := onboarding.Field(f)
		fmt.Fprintf(w, "%s %s: %s\n", RenderStatus("fail"), f, onboard.ReasonText(tr, field, fe[field]))
	}
}
