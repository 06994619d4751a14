// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package poll runs a condition check repeatedly with exponential backoff
// until it reports done, fails, runs out of attempts, or the context ends.
package poll

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// ErrExhausted is returned when every attempt ran without the condition
// reporting done.
var ErrExhausted = errors.New("poll: attempts exhausted")

// Config describes the polling behavior.
type Config struct {
	// MaxAttempts bounds the number of calls. 0 means unbounded; the loop then
	// ends only on done, error or context cancellation.
	MaxAttempts int

	// InitialBackoff is the delay after the first unsuccessful attempt.
	// 0 polls back-to-back.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration

	// JitterFactor randomizes each delay by +/- the given fraction.
	JitterFactor float64
}

// Func is one polling attempt. Returning done=true stops the loop with nil;
// returning a non-nil error stops it with that error.
type Func func(ctx context.Context, attempt int) (done bool, err error)

// Until calls fn until it reports done. Errors from fn are not retried.
func Until(ctx context.Context, cfg Config, fn Func) error {
	backoff := cfg.InitialBackoff
	for attempt := 1; cfg.MaxAttempts <= 0 || attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		done, err := fn(ctx, attempt)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		if cfg.MaxAttempts > 0 && attempt == cfg.MaxAttempts {
			break
		}
		if backoff <= 0 {
			continue
		}

		sleep := applyJitter(backoff, cfg.JitterFactor)
		if cfg.MaxBackoff > 0 && sleep > cfg.MaxBackoff {
			sleep = cfg.MaxBackoff
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff = Next(backoff, cfg.MaxBackoff)
	}
	return ErrExhausted
}

// Next doubles the delay, capped at max when max is positive.
func Next(current, max time.Duration) time.Duration {
	next := current * 2
	if max > 0 && next > max {
		return max
	}
	return next
}

func applyJitter(d time.Duration, factor float64) time.Duration {
	if factor <= 0 {
		return d
	}
	delta := int64(float64(d) * factor)
	if delta <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(2*delta)-delta)
}
