// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the greenchat command line and implements the headless
// commands.
//
// # Commands
//
//	greenchat                  Start the terminal UI (default)
//	greenchat login            Run the onboarding handshake from prompts
//	greenchat status           Show the instance state
//	greenchat send "text"      Send one message
//	greenchat serve            Run the webhook receiver
//	greenchat config ...       Show or change configuration
//	greenchat version          Show version information
//	greenchat help             Show help
//
// Every handler returns an error; main maps it to an exit code with
// ExitCode.
package cli
