// Package state keeps per-user dialogue sessions in memory. Dialogues
// declare their own State values and register a handler per state; the
// text router hands in-dialogue messages to ManagerHandler.
package state
