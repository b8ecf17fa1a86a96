package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cb := &tele.Callback{Data: "\\fpublish|42_1700000000"}
	unique, payload := ParseCallbackData(cb)
	if unique != "publish" {
		t.Fatalf("unique = %q", unique)
	}
	if payload != "42_1700000000" {
		t.Fatalf("payload = %q", payload)
	}
}

func TestParseCallbackDataNoPayload(t *testing.T) {
	cb := &tele.Callback{Data: "\\fstart_post"}
	unique, payload := ParseCallbackData(cb)
	if unique != "start_post" {
		t.Fatalf("unique = %q", unique)
	}
	if payload != "" {
		t.Fatalf("payload = %q", payload)
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	unique, payload := ParseCallbackData(nil)
	if unique != "" || payload != "" {
		t.Fatalf("expected empty parse, got %q %q", unique, payload)
	}
}
