package submission

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m3rciful/newsbot/archive"
)

const testChannel int64 = -100777

type fakeRecorder struct {
	entries []archive.Entry
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, e archive.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func seededModerator(outbox Messenger, recorder archive.Recorder) (*Moderator, Store, Record) {
	store := NewMemoryStore()
	rec := Record{
		ID:         "42_1700000000",
		Title:      "Breaking",
		Body:       "Full story text",
		AuthorID:   42,
		AuthorName: "alice",
	}
	store.Put(rec.ID, rec)
	return NewModerator(store, outbox, testChannel, recorder), store, rec
}

func TestDecidePublish(t *testing.T) {
	outbox := &fakeMessenger{}
	mod, store, rec := seededModerator(outbox, nil)

	text, err := mod.Decide(context.Background(), ActionPublish, rec.ID)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}

	posts := outbox.to(testChannel)
	if len(posts) != 1 {
		t.Fatalf("channel sends = %d", len(posts))
	}
	if !strings.Contains(posts[0].text, rec.Title) || !strings.Contains(posts[0].text, rec.Body) {
		t.Fatalf("channel post = %q", posts[0].text)
	}

	notices := outbox.to(rec.AuthorID)
	if len(notices) != 1 {
		t.Fatalf("author notices = %d", len(notices))
	}
	if !strings.Contains(notices[0].text, "published") {
		t.Fatalf("author notice = %q", notices[0].text)
	}

	if _, ok := store.Get(rec.ID); ok {
		t.Fatal("record must be retired after the decision")
	}
	for _, want := range []string{"PUBLISHED", rec.Title, rec.AuthorName, rec.ID} {
		if !strings.Contains(text, want) {
			t.Fatalf("terminal text misses %q: %s", want, text)
		}
	}
}

func TestDecideReject(t *testing.T) {
	outbox := &fakeMessenger{}
	mod, store, rec := seededModerator(outbox, nil)

	text, err := mod.Decide(context.Background(), ActionReject, rec.ID)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}

	if posts := outbox.to(testChannel); len(posts) != 0 {
		t.Fatalf("reject must not post to the channel, got %d", len(posts))
	}
	notices := outbox.to(rec.AuthorID)
	if len(notices) != 1 {
		t.Fatalf("author notices = %d", len(notices))
	}
	if !strings.Contains(notices[0].text, "rejected") {
		t.Fatalf("author notice = %q", notices[0].text)
	}
	if _, ok := store.Get(rec.ID); ok {
		t.Fatal("record must be retired after the decision")
	}
	if !strings.Contains(text, "REJECTED") {
		t.Fatalf("terminal text = %q", text)
	}
}

func TestDecideReplayLandsOnNotFound(t *testing.T) {
	outbox := &fakeMessenger{}
	mod, _, rec := seededModerator(outbox, nil)
	ctx := context.Background()

	if _, err := mod.Decide(ctx, ActionPublish, rec.ID); err != nil {
		t.Fatalf("first decision: %v", err)
	}
	sends := len(outbox.sent)

	// A duplicate click, or the opposite button on the same message.
	for _, action := range []Action{ActionPublish, ActionReject} {
		text, err := mod.Decide(ctx, action, rec.ID)
		if err != nil {
			t.Fatalf("replayed %s: %v", action, err)
		}
		if text != notFoundReply {
			t.Fatalf("replayed %s reply = %q", action, text)
		}
	}
	if len(outbox.sent) != sends {
		t.Fatalf("replays caused %d extra sends", len(outbox.sent)-sends)
	}
}

func TestDecideUnknownID(t *testing.T) {
	outbox := &fakeMessenger{}
	mod, _, _ := seededModerator(outbox, nil)

	text, err := mod.Decide(context.Background(), ActionPublish, "999_1")
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if text != notFoundReply {
		t.Fatalf("reply = %q", text)
	}
	if len(outbox.sent) != 0 {
		t.Fatal("an unknown id must not produce any sends")
	}
}

func TestDecideRejectsMalformedInput(t *testing.T) {
	outbox := &fakeMessenger{}
	mod, _, rec := seededModerator(outbox, nil)
	ctx := context.Background()

	if _, err := mod.Decide(ctx, ActionPublish, "  "); !errors.Is(err, ErrBadDecision) {
		t.Fatalf("empty id err = %v", err)
	}
	if _, err := mod.Decide(ctx, Action("approve"), rec.ID); !errors.Is(err, ErrBadDecision) {
		t.Fatalf("unknown action err = %v", err)
	}
	if len(outbox.sent) != 0 {
		t.Fatal("malformed input must not produce any sends")
	}
}

func TestDecideAuthorNotifyFailureDoesNotBlock(t *testing.T) {
	outbox := &fakeMessenger{}
	mod, store, rec := seededModerator(outbox, nil)
	outbox.fail = map[int64]error{rec.AuthorID: errors.New("telegram: bot was blocked by the user")}

	text, err := mod.Decide(context.Background(), ActionPublish, rec.ID)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if len(outbox.to(testChannel)) != 1 {
		t.Fatal("publish must reach the channel even when the author is unreachable")
	}
	if _, ok := store.Get(rec.ID); ok {
		t.Fatal("record must still be retired")
	}
	if !strings.Contains(text, "PUBLISHED") {
		t.Fatalf("terminal text = %q", text)
	}
}

func TestDecideChannelFailureKeepsRecord(t *testing.T) {
	sendErr := errors.New("telegram: chat not found")
	outbox := &fakeMessenger{fail: map[int64]error{testChannel: sendErr}}
	mod, store, rec := seededModerator(outbox, nil)
	ctx := context.Background()

	if _, err := mod.Decide(ctx, ActionPublish, rec.ID); !errors.Is(err, sendErr) {
		t.Fatalf("err = %v, expected the channel failure", err)
	}
	if _, ok := store.Get(rec.ID); !ok {
		t.Fatal("record must survive a failed publish for a retry")
	}

	outbox.fail = nil
	text, err := mod.Decide(ctx, ActionPublish, rec.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !strings.Contains(text, "PUBLISHED") {
		t.Fatalf("retry terminal text = %q", text)
	}
}

func TestDecideArchivesOutcome(t *testing.T) {
	outbox := &fakeMessenger{}
	recorder := &fakeRecorder{}
	mod, _, rec := seededModerator(outbox, recorder)

	if _, err := mod.Decide(context.Background(), ActionPublish, rec.ID); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if len(recorder.entries) != 1 {
		t.Fatalf("archived entries = %d", len(recorder.entries))
	}
	e := recorder.entries[0]
	if e.ID != rec.ID || e.Status != archive.StatusPublished || e.AuthorID != rec.AuthorID {
		t.Fatalf("archived entry = %+v", e)
	}
}

func TestDecideArchiveFailureDoesNotBlock(t *testing.T) {
	outbox := &fakeMessenger{}
	recorder := &fakeRecorder{err: errors.New("pq: connection refused")}
	mod, store, rec := seededModerator(outbox, recorder)

	if _, err := mod.Decide(context.Background(), ActionReject, rec.ID); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if _, ok := store.Get(rec.ID); ok {
		t.Fatal("record must be retired even when archiving fails")
	}
}
