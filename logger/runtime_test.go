package logger

import "testing"

func TestBuildRID(t *testing.T) {
	rid := BuildRID(42, -100123, 7)
	if rid != "42:-100123:7" {
		t.Fatalf("rid = %q", rid)
	}
}

func TestUpdateMetaRoundTrip(t *testing.T) {
	ctx := WithUpdateMeta(Background(), 42, 7, 9)
	if got := UpdateIDFrom(ctx); got != 42 {
		t.Fatalf("update id = %d", got)
	}
	if got := UserIDFrom(ctx); got != 7 {
		t.Fatalf("user id = %d", got)
	}
	if got := ChatIDFrom(ctx); got != 9 {
		t.Fatalf("chat id = %d", got)
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "hello\x00world\x07"
	if got := Sanitize(in); got != "helloworld" {
		t.Fatalf("sanitize = %q", got)
	}
	if got := SanitizeLimit("abcdef", 3); got != "abc" {
		t.Fatalf("sanitize limit = %q", got)
	}
	if got := SanitizeLimit("abc", 0); got != "" {
		t.Fatalf("sanitize limit zero = %q", got)
	}
}
