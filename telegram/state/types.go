package state

import tele "gopkg.in/telebot.v4"

// State names one step of a user dialogue.
type State string

// StateIdle means the user has no active dialogue.
const StateIdle State = "idle"

// Session is one user's dialogue position plus its scratch values.
type Session struct {
	State    State
	TempData map[string]interface{}
}

// Manager tracks per-user dialogue sessions. All methods are safe for
// concurrent use; each user's session is independent of every other's.
type Manager interface {
	SetState(userID int64, st State)
	GetState(userID int64) State
	ClearState(userID int64)
	InProgress(userID int64) bool

	SetTemp(userID int64, key string, value interface{})
	GetTemp(userID int64, key string) (interface{}, bool)
	GetTempString(userID int64, key string) (string, bool)
	ClearTemp(userID int64, key string)

	// Clear drops the whole session: state and temp values together.
	Clear(userID int64)

	// ManagerHandler runs the handler registered for the user's state.
	ManagerHandler(c tele.Context) error
}
