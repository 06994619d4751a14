// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server receives gateway webhooks over HTTP.
//
// Once onboarding has switched on the incoming, outgoing and state webhooks,
// the gateway pushes every event to the configured webhook URL. The server
// decodes each delivery, turns message webhooks into chat messages and
// stores them in the history database so the chat screen finds them on its
// next load.
//
// # Endpoints
//
//   - POST /webhook  - gateway webhook delivery (optional bearer token)
//   - GET  /healthz  - liveness
//   - GET  /metrics  - Prometheus metrics
//
// # Usage
//
//	srv, err := server.New(cfg.Webhook, store, logger)
//	if err != nil {
//		return err
//	}
//	return srv.Run(ctx)
package server
