package state

import tele "gopkg.in/telebot.v4"

// dialogueHandlers maps a state to the handler that consumes text sent
// while a user sits in it. Registration happens during app wiring, before
// the bot starts, so the map needs no locking afterwards.
var dialogueHandlers = map[State]tele.HandlerFunc{}

// RegisterHandler binds a dialogue state to its text handler.
func RegisterHandler(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	dialogueHandlers[st] = h
}
