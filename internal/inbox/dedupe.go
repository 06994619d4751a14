// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package inbox

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Deduper remembers the most recent message ids. The gateway delivers a
// notification again when its deletion did not go through, and the same
// message can arrive both by polling and by webhook.
type Deduper struct {
	seen *lru.Cache[string, struct{}]
}

// NewDeduper remembers up to size ids.
func NewDeduper(size int) (*Deduper, error) {
	if size < 1 {
		size = 1
	}
	c, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("create dedupe cache: %w", err)
	}
	return &Deduper{seen: c}, nil
}

// Seen reports whether id was already recorded, and records it. Empty ids
// are never considered duplicates.
func (d *Deduper) Seen(id string) bool {
	if id == "" {
		return false
	}
	found, _ := d.seen.ContainsOrAdd(id, struct{}{})
	return found
}

// Forget drops id so it can be delivered again.
func (d *Deduper) Forget(id string) {
	d.seen.Remove(id)
}

// Len returns the number of remembered ids.
func (d *Deduper) Len() int {
	return d.seen.Len()
}
