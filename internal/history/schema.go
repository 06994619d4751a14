// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

// SchemaVersion is stored in the metadata table.
const SchemaVersion = "1"

// Schema creates the history tables.
const Schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    instance_id TEXT    NOT NULL,
    id          TEXT    NOT NULL,
    chat_id     TEXT    NOT NULL,
    direction   TEXT    NOT NULL,
    text        TEXT    NOT NULL DEFAULT '',
    fallback    TEXT    NOT NULL DEFAULT '',
    sender      TEXT    NOT NULL DEFAULT '',
    status      TEXT    NOT NULL DEFAULT '',
    ts          INTEGER NOT NULL,
    PRIMARY KEY (instance_id, id)
);

CREATE INDEX IF NOT EXISTS idx_messages_chat_ts ON messages(instance_id, chat_id, ts);
`

// InitMetadata seeds the metadata table.
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '` + SchemaVersion + `');
`
