package submission

import (
	"testing"
	"time"
)

func TestNewIDFormat(t *testing.T) {
	at := time.Unix(1700000000, 0)
	id := NewID(42, at)
	if id != "42_1700000000" {
		t.Fatalf("id = %q, expected 42_1700000000", id)
	}
}

func TestNewIDDistinctPerAuthorAndSecond(t *testing.T) {
	at := time.Unix(1700000000, 0)
	if NewID(1, at) == NewID(2, at) {
		t.Fatal("different authors at the same time must not collide")
	}
	if NewID(1, at) == NewID(1, at.Add(time.Second)) {
		t.Fatal("same author at different seconds must not collide")
	}
}

func TestDisplayNamePrefersUsername(t *testing.T) {
	a := Author{ID: 1, Username: "alice", FirstName: "Alice"}
	if got := a.DisplayName(); got != "alice" {
		t.Fatalf("display name = %q, expected username", got)
	}
}

func TestDisplayNameFallsBackToFirstName(t *testing.T) {
	a := Author{ID: 1, FirstName: "Alice"}
	if got := a.DisplayName(); got != "Alice" {
		t.Fatalf("display name = %q, expected first name", got)
	}
}
