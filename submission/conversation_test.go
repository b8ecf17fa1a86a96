package submission

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/newsbot/telegram/state"
)

type sentMessage struct {
	recipient int64
	text      string
	markup    *tele.ReplyMarkup
}

// fakeMessenger records outbound sends and can fail selected recipients.
type fakeMessenger struct {
	sent []sentMessage
	fail map[int64]error
}

func (f *fakeMessenger) Send(_ context.Context, recipient int64, text string, markup *tele.ReplyMarkup) error {
	if err := f.fail[recipient]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMessage{recipient: recipient, text: text, markup: markup})
	return nil
}

func (f *fakeMessenger) to(recipient int64) []sentMessage {
	var out []sentMessage
	for _, m := range f.sent {
		if m.recipient == recipient {
			out = append(out, m)
		}
	}
	return out
}

const testModerationChat int64 = -100500

func newTestConversation(outbox Messenger) (*Conversation, Store) {
	store := NewMemoryStore()
	conv := NewConversation(state.NewMemoryManager(), store, outbox, testModerationChat)
	conv.now = func() time.Time { return time.Unix(1700000000, 0) }
	return conv, store
}

func TestConversationFullFlow(t *testing.T) {
	outbox := &fakeMessenger{}
	conv, store := newTestConversation(outbox)
	author := Author{ID: 42, Username: "alice"}
	ctx := context.Background()

	if got := conv.Start(author.ID); got != titlePrompt {
		t.Fatalf("start reply = %q", got)
	}
	if !conv.InProgress(author.ID) {
		t.Fatal("dialogue should be in progress after start")
	}

	reply, err := conv.HandleText(ctx, author, "Breaking")
	if err != nil {
		t.Fatalf("title step: %v", err)
	}
	if reply != bodyPrompt {
		t.Fatalf("title step reply = %q", reply)
	}

	reply, err = conv.HandleText(ctx, author, "Full story text")
	if err != nil {
		t.Fatalf("body step: %v", err)
	}
	if reply != submittedReply {
		t.Fatalf("body step reply = %q", reply)
	}
	if conv.InProgress(author.ID) {
		t.Fatal("dialogue should be finished after the body step")
	}

	id := NewID(author.ID, time.Unix(1700000000, 0))
	rec, ok := store.Get(id)
	if !ok {
		t.Fatalf("expected stored record %s", id)
	}
	if rec.Title != "Breaking" || rec.Body != "Full story text" {
		t.Fatalf("stored record = %+v", rec)
	}
	if rec.AuthorID != author.ID || rec.AuthorName != "alice" {
		t.Fatalf("stored author = %+v", rec)
	}

	mod := outbox.to(testModerationChat)
	if len(mod) != 1 {
		t.Fatalf("moderation sends = %d", len(mod))
	}
	for _, want := range []string{"Breaking", "Full story text", "alice", id} {
		if !strings.Contains(mod[0].text, want) {
			t.Fatalf("moderation message misses %q: %s", want, mod[0].text)
		}
	}
	if mod[0].markup == nil || len(mod[0].markup.InlineKeyboard) == 0 {
		t.Fatal("moderation message must carry the decision keyboard")
	}
}

func TestConversationDraftsAreIsolatedPerUser(t *testing.T) {
	outbox := &fakeMessenger{}
	conv, store := newTestConversation(outbox)
	ctx := context.Background()
	alice := Author{ID: 1, Username: "alice"}
	bob := Author{ID: 2, Username: "bob"}

	conv.Start(alice.ID)
	conv.Start(bob.ID)

	if _, err := conv.HandleText(ctx, alice, "alice title"); err != nil {
		t.Fatal(err)
	}
	if _, err := conv.HandleText(ctx, bob, "bob title"); err != nil {
		t.Fatal(err)
	}
	if _, err := conv.HandleText(ctx, bob, "bob body"); err != nil {
		t.Fatal(err)
	}

	rec, ok := store.Get(NewID(bob.ID, time.Unix(1700000000, 0)))
	if !ok {
		t.Fatal("bob's record missing")
	}
	if rec.Title != "bob title" || rec.Body != "bob body" {
		t.Fatalf("bob's record picked up foreign draft data: %+v", rec)
	}
	if !conv.InProgress(alice.ID) {
		t.Fatal("alice's draft must survive bob's completion")
	}
}

func TestConversationCancelAndRestart(t *testing.T) {
	outbox := &fakeMessenger{}
	conv, store := newTestConversation(outbox)
	ctx := context.Background()
	author := Author{ID: 7, FirstName: "Eve"}

	conv.Start(author.ID)
	if _, err := conv.HandleText(ctx, author, "stale title"); err != nil {
		t.Fatal(err)
	}
	if got := conv.Cancel(author.ID); got != cancelledReply {
		t.Fatalf("cancel reply = %q", got)
	}
	if conv.InProgress(author.ID) {
		t.Fatal("cancel must end the dialogue")
	}

	// After cancel, free text is not part of any dialogue.
	reply, err := conv.HandleText(ctx, author, "loose text")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "" {
		t.Fatalf("reply outside a dialogue = %q", reply)
	}

	// A restart must not inherit the stale title.
	conv.Start(author.ID)
	if _, err := conv.HandleText(ctx, author, "fresh title"); err != nil {
		t.Fatal(err)
	}
	if _, err := conv.HandleText(ctx, author, "fresh body"); err != nil {
		t.Fatal(err)
	}
	rec, ok := store.Get(NewID(author.ID, time.Unix(1700000000, 0)))
	if !ok {
		t.Fatal("record missing after restart")
	}
	if rec.Title != "fresh title" {
		t.Fatalf("title = %q, stale draft leaked into the restart", rec.Title)
	}
}

func TestConversationRestartMidDialogueResetsTitle(t *testing.T) {
	outbox := &fakeMessenger{}
	conv, store := newTestConversation(outbox)
	ctx := context.Background()
	author := Author{ID: 9, Username: "carol"}

	conv.Start(author.ID)
	if _, err := conv.HandleText(ctx, author, "first title"); err != nil {
		t.Fatal(err)
	}

	// Starting over from the body step goes back to the title step.
	if got := conv.Start(author.ID); got != titlePrompt {
		t.Fatalf("restart reply = %q", got)
	}
	if _, err := conv.HandleText(ctx, author, "second title"); err != nil {
		t.Fatal(err)
	}
	if _, err := conv.HandleText(ctx, author, "body"); err != nil {
		t.Fatal(err)
	}

	rec, _ := store.Get(NewID(author.ID, time.Unix(1700000000, 0)))
	if rec.Title != "second title" {
		t.Fatalf("title = %q, restart must discard the first title", rec.Title)
	}
}

func TestConversationAcceptsEmptyTitleVerbatim(t *testing.T) {
	outbox := &fakeMessenger{}
	conv, store := newTestConversation(outbox)
	ctx := context.Background()
	author := Author{ID: 11, Username: "dave"}

	conv.Start(author.ID)
	if _, err := conv.HandleText(ctx, author, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := conv.HandleText(ctx, author, "body only"); err != nil {
		t.Fatal(err)
	}

	rec, ok := store.Get(NewID(author.ID, time.Unix(1700000000, 0)))
	if !ok {
		t.Fatal("record missing")
	}
	if rec.Title != "" {
		t.Fatalf("title = %q, empty input must be kept verbatim", rec.Title)
	}
}

func TestConversationModerationSendFailureKeepsState(t *testing.T) {
	sendErr := errors.New("telegram: chat unreachable")
	outbox := &fakeMessenger{fail: map[int64]error{testModerationChat: sendErr}}
	conv, store := newTestConversation(outbox)
	ctx := context.Background()
	author := Author{ID: 13, Username: "erin"}

	conv.Start(author.ID)
	if _, err := conv.HandleText(ctx, author, "title"); err != nil {
		t.Fatal(err)
	}
	_, err := conv.HandleText(ctx, author, "body")
	if !errors.Is(err, sendErr) {
		t.Fatalf("err = %v, expected the send failure", err)
	}

	// The dialogue stays at the body step so the author can resend.
	if !conv.InProgress(author.ID) {
		t.Fatal("dialogue must stay open after a moderation send failure")
	}
	if store.Len() != 1 {
		t.Fatalf("store len = %d, record must stay for the retry", store.Len())
	}

	outbox.fail = nil
	reply, err := conv.HandleText(ctx, author, "body")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if reply != submittedReply {
		t.Fatalf("retry reply = %q", reply)
	}
}
