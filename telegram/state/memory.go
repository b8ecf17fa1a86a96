package state

import (
	"log/slog"
	"sync"

	"github.com/m3rciful/newsbot/logger"
	tghelpers "github.com/m3rciful/newsbot/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryManager returns the in-memory Manager. Sessions live for the
// process lifetime or until Clear, whichever comes first.
func NewMemoryManager() Manager {
	return &memoryManager{sessions: make(map[int64]*Session)}
}

// session returns the user's session, creating it when absent.
// Callers must hold the write lock.
func (m *memoryManager) session(userID int64) *Session {
	sess, ok := m.sessions[userID]
	if !ok {
		sess = &Session{State: StateIdle, TempData: make(map[string]interface{})}
		m.sessions[userID] = sess
	}
	return sess
}

func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).State = st
}

func (m *memoryManager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess.State
	}
	return StateIdle
}

func (m *memoryManager) ClearState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		sess.State = StateIdle
	}
}

func (m *memoryManager) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

func (m *memoryManager) SetTemp(userID int64, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).TempData[key] = value
}

func (m *memoryManager) GetTemp(userID int64, key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	val, ok := sess.TempData[key]
	return val, ok
}

func (m *memoryManager) GetTempString(userID int64, key string) (string, bool) {
	val, ok := m.GetTemp(userID, key)
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

func (m *memoryManager) ClearTemp(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		delete(sess.TempData, key)
	}
}

func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// ManagerHandler dispatches the update to the handler registered for the
// sender's current state. Unregistered states drop the update silently.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	current := m.GetState(sender.ID)
	logger.Debug(tghelpers.BuildContext(c), "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.Int64("user_id", sender.ID),
		slog.String("state", string(current)),
	)

	if handler, ok := dialogueHandlers[current]; ok {
		return handler(c)
	}
	return nil
}
