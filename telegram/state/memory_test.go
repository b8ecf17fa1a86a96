package state

import "testing"

func TestStateLifecycle(t *testing.T) {
	m := NewMemoryManager()

	if m.GetState(1) != StateIdle {
		t.Fatal("new user should be idle")
	}
	if m.InProgress(1) {
		t.Fatal("new user should not be in progress")
	}

	m.SetState(1, State("awaiting_title"))
	if !m.InProgress(1) {
		t.Fatal("expected active state")
	}
	if got := m.GetState(1); got != State("awaiting_title") {
		t.Fatalf("state = %q", got)
	}

	m.ClearState(1)
	if m.InProgress(1) {
		t.Fatal("state not cleared")
	}
}

func TestTempDataPerUser(t *testing.T) {
	m := NewMemoryManager()

	m.SetTemp(1, "title", "first")
	m.SetTemp(2, "title", "second")

	got, ok := m.GetTempString(1, "title")
	if !ok || got != "first" {
		t.Fatalf("user 1 title = %q ok=%v", got, ok)
	}
	got, ok = m.GetTempString(2, "title")
	if !ok || got != "second" {
		t.Fatalf("user 2 title = %q ok=%v", got, ok)
	}

	m.ClearTemp(1, "title")
	if _, ok := m.GetTemp(1, "title"); ok {
		t.Fatal("user 1 temp not cleared")
	}
	if _, ok := m.GetTemp(2, "title"); !ok {
		t.Fatal("user 2 temp must survive user 1 clear")
	}
}

func TestGetTempStringWrongType(t *testing.T) {
	m := NewMemoryManager()
	m.SetTemp(1, "n", 42)
	if _, ok := m.GetTempString(1, "n"); ok {
		t.Fatal("int value should not assert as string")
	}
}

func TestClearRemovesSession(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(1, State("awaiting_body"))
	m.SetTemp(1, "title", "x")
	m.Clear(1)
	if m.InProgress(1) {
		t.Fatal("cleared user still in progress")
	}
	if _, ok := m.GetTemp(1, "title"); ok {
		t.Fatal("cleared user still has temp data")
	}
}
