// Package state keeps per-user conversation data in memory.
// Stores are keyed by Telegram user ID and never shared between users,
// so every operation only has to be atomic for a single key.
package state
