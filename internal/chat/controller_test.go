// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"parley/internal/api"
	"parley/internal/localstore"
	"parley/internal/model"
	"parley/internal/nav"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

type testEnv struct {
	ctrl  *Controller
	nav   *nav.Store
	store *localstore.Store
	srv   *httptest.Server
}

func newTestEnv(t *testing.T, guest bool, handler http.Handler) *testEnv {
	t.Helper()

	store, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if guest {
		if err := store.SetGuestMode(true); err != nil {
			t.Fatal(err)
		}
	} else {
		if err := store.SetUser(localstore.UserRecord{UserID: "alice"}); err != nil {
			t.Fatal(err)
		}
	}

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	navStore := nav.NewStore(nav.ThemeDark, nil)
	ctrl := NewController(api.NewClient(srv.URL), store, navStore, nil)
	return &testEnv{ctrl: ctrl, nav: navStore, store: store, srv: srv}
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// blockableHandler serves /chats/chat, holding each request until release is
// closed (or the request is cancelled). Other routes respond immediately.
func chatBackend(t *testing.T, release <-chan struct{}, reply string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chats/create_chat", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "created-1"})
	})
	mux.HandleFunc("/chats/chat", func(w http.ResponseWriter, r *http.Request) {
		if release != nil {
			select {
			case <-release:
			case <-r.Context().Done():
				return
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"reply": reply})
	})
	return mux
}

func assistantCount(msgs []model.Message) int {
	n := 0
	for _, m := range msgs {
		if m.Role == model.RoleAssistant {
			n++
		}
	}
	return n
}

// =============================================================================
// GUEST SENDS
// =============================================================================

func TestGuestSendSkipsSessionCreation(t *testing.T) {
	var createCalled atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/chats/create_chat", func(w http.ResponseWriter, r *http.Request) {
		createCalled.Store(true)
		json.NewEncoder(w).Encode(map[string]string{"id": "never"})
	})
	mux.HandleFunc("/chats/chat", func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		json.NewDecoder(r.Body).Decode(&raw)
		if string(raw["session_id"]) != "null" {
			t.Errorf("guest session_id = %s, want null", raw["session_id"])
		}
		json.NewEncoder(w).Encode(map[string]any{"reply": "hello guest"})
	})

	env := newTestEnv(t, true, mux)
	env.ctrl.Send("hi", nil)

	waitUntil(t, "reply", func() bool {
		return assistantCount(env.ctrl.Messages()) == 1
	})

	if createCalled.Load() {
		t.Error("guest send must not create a session")
	}
	if env.ctrl.Session() != nil {
		t.Error("guest conversations never get a session record")
	}
	if env.nav.ActiveChatID() != "" {
		t.Errorf("guest active chat = %q, want empty", env.nav.ActiveChatID())
	}
	if env.ctrl.LoadingActive() {
		t.Error("loading flag not cleared")
	}
}

// =============================================================================
// AUTHENTICATED FIRST SEND
// =============================================================================

func TestFirstSendCreatesSessionAndAdoptsID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chats/create_chat", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "c7"})
	})
	mux.HandleFunc("/chats/chat", func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		json.NewDecoder(r.Body).Decode(&raw)
		if string(raw["session_id"]) != `"c7"` {
			t.Errorf("session_id = %s, want the freshly created id", raw["session_id"])
		}
		json.NewEncoder(w).Encode(map[string]any{"reply": "welcome"})
	})

	env := newTestEnv(t, false, mux)
	before := env.nav.Snapshot().RefreshSeq
	env.ctrl.Send("first message", nil)

	waitUntil(t, "created chat adopted", func() bool {
		return env.nav.ActiveChatID() == "c7"
	})

	if env.store.ActiveChatID() != "c7" {
		t.Errorf("persisted active chat = %q", env.store.ActiveChatID())
	}
	sess := env.ctrl.Session()
	if sess == nil || sess.ID != "c7" {
		t.Fatalf("session = %+v", sess)
	}
	if sess.Title == "" {
		t.Error("session title should derive from the first user message")
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("session messages = %d, want user message plus reply", len(sess.Messages))
	}
	if sess.Messages[1].Role != model.RoleAssistant || sess.Messages[1].Content != "welcome" {
		t.Errorf("session transcript out of step: %+v", sess.Messages[1])
	}
	if env.nav.Snapshot().RefreshSeq == before {
		t.Error("chat list refresh not signalled")
	}
	if env.ctrl.InputCentered() {
		t.Error("composer should dock after the first send")
	}
}

// =============================================================================
// STALE COMPLETIONS
// =============================================================================

func TestCompletionAfterSwitchingChatsIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	env := newTestEnv(t, false, chatBackend(t, release, "stale reply"))

	env.nav.SetActiveChat("chat-a")
	env.ctrl.Send("question in a", nil)
	waitUntil(t, "loading in chat-a", func() bool { return env.ctrl.Loading("chat-a") })

	// User switches to another conversation before the reply lands.
	env.nav.SetActiveChat("chat-b")
	close(release)

	waitUntil(t, "loading cleared", func() bool { return !env.ctrl.Loading("chat-a") })

	if n := assistantCount(env.ctrl.Messages()); n != 0 {
		t.Errorf("stale reply reached the transcript: %d assistant messages", n)
	}
	if err := env.ctrl.Err(); err != nil {
		t.Errorf("discard is silent, got error %v", err)
	}
}

func TestLoadingIsKeyedPerConversation(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	env := newTestEnv(t, false, chatBackend(t, release, "slow"))

	env.nav.SetActiveChat("chat-a")
	env.ctrl.Send("waiting", nil)
	waitUntil(t, "loading in chat-a", func() bool { return env.ctrl.Loading("chat-a") })

	env.nav.SetActiveChat("chat-b")
	if env.ctrl.LoadingActive() {
		t.Error("chat-b must not show chat-a's spinner")
	}
	if !env.ctrl.Loading("chat-a") {
		t.Error("chat-a's pending send lost its flag")
	}
}

func TestResendInSameChatSupersedes(t *testing.T) {
	// The loading flag flips before the first request is even dialed, so the
	// test must gate on the request actually reaching the backend before
	// issuing the superseding send.
	arrived := make(chan struct{})
	hold := make(chan struct{})
	defer close(hold)
	mux := http.NewServeMux()
	var calls atomic.Int32
	mux.HandleFunc("/chats/chat", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(arrived)
			select {
			case <-hold:
			case <-r.Context().Done():
			}
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"reply": "second reply"})
	})

	env := newTestEnv(t, false, mux)
	env.nav.SetActiveChat("chat-a")
	env.ctrl.Send("one", nil)
	select {
	case <-arrived:
	case <-time.After(3 * time.Second):
		t.Fatal("first request never reached the backend")
	}

	env.ctrl.Send("two", nil)

	waitUntil(t, "second reply", func() bool {
		return assistantCount(env.ctrl.Messages()) == 1
	})

	// Give the cancelled first request a moment; it must change nothing.
	time.Sleep(50 * time.Millisecond)
	msgs := env.ctrl.Messages()
	if assistantCount(msgs) != 1 {
		t.Errorf("assistant messages = %d, want 1", assistantCount(msgs))
	}
	if msgs[len(msgs)-1].Content != "second reply" {
		t.Errorf("last message = %q", msgs[len(msgs)-1].Content)
	}
	if env.ctrl.Err() != nil {
		t.Errorf("superseding a send is silent, got %v", env.ctrl.Err())
	}
}

// =============================================================================
// NEW CHAT
// =============================================================================

func TestNewChatCancelsEverythingAndResets(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	env := newTestEnv(t, false, chatBackend(t, release, "never lands"))

	env.nav.SetActiveChat("chat-a")
	env.ctrl.Send("pending", nil)
	waitUntil(t, "send pending", func() bool { return env.ctrl.Loading("chat-a") })

	env.ctrl.NewChat()

	if got := env.ctrl.Messages(); len(got) != 0 {
		t.Errorf("messages after reset = %d", len(got))
	}
	if env.ctrl.Loading("chat-a") {
		t.Error("loading flags should be wiped")
	}
	if env.nav.ActiveChatID() != "" {
		t.Errorf("active chat = %q, want empty", env.nav.ActiveChatID())
	}
	if !env.ctrl.InputCentered() {
		t.Error("composer should re-center on the new-chat screen")
	}
	if env.store.ActiveChatID() != "" {
		t.Errorf("persisted active chat = %q", env.store.ActiveChatID())
	}

	// The cancelled send must stay silent.
	time.Sleep(50 * time.Millisecond)
	if env.ctrl.Err() != nil {
		t.Errorf("cancellation surfaced as error: %v", env.ctrl.Err())
	}
	if len(env.ctrl.Messages()) != 0 {
		t.Error("cancelled send wrote into the fresh state")
	}
}

// =============================================================================
// LOADING SESSIONS
// =============================================================================

func TestLoadSessionLastSelectionWins(t *testing.T) {
	slow := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/chats/get_chat/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-slow:
		case <-r.Context().Done():
			return
		}
		w.Write([]byte(`[{"role":"user","content":"from slow"}]`))
	})
	mux.HandleFunc("/chats/get_chat/fast", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"role":"user","content":"from fast"},{"role":"assistant","content":"ok"}]`))
	})

	env := newTestEnv(t, false, mux)
	env.ctrl.LoadSession("slow")
	env.ctrl.LoadSession("fast")

	waitUntil(t, "fast transcript", func() bool {
		msgs := env.ctrl.Messages()
		return len(msgs) == 2 && msgs[0].Content == "from fast"
	})
	close(slow)

	time.Sleep(50 * time.Millisecond)
	msgs := env.ctrl.Messages()
	if len(msgs) != 2 || msgs[0].Content != "from fast" {
		t.Errorf("superseded load overwrote the transcript: %+v", msgs)
	}
	if sess := env.ctrl.Session(); sess == nil || sess.ID != "fast" {
		t.Errorf("session = %+v", sess)
	}
	if env.nav.ActiveChatID() != "fast" {
		t.Errorf("active chat = %q", env.nav.ActiveChatID())
	}
}

func TestLoadSessionDocksComposer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chats/get_chat/empty", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	env := newTestEnv(t, false, mux)
	if !env.ctrl.InputCentered() {
		t.Fatal("composer starts centered before any conversation is opened")
	}

	// Opening a saved conversation docks the composer even when the server
	// returns no messages for it.
	env.ctrl.LoadSession("empty")
	waitUntil(t, "session loaded", func() bool {
		sess := env.ctrl.Session()
		return sess != nil && sess.ID == "empty"
	})
	if env.ctrl.InputCentered() {
		t.Error("composer should dock when a conversation is opened")
	}
}

func TestLoadSessionFailureKeepsTranscript(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chats/get_chat/good", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"role":"user","content":"kept"}]`))
	})
	mux.HandleFunc("/chats/get_chat/bad", func(w http.ResponseWriter, r *http.Request) {
		// Not an array.
		w.Write([]byte(`{"oops":true}`))
	})

	env := newTestEnv(t, false, mux)
	env.ctrl.LoadSession("good")
	waitUntil(t, "good transcript", func() bool { return len(env.ctrl.Messages()) == 1 })

	env.ctrl.LoadSession("bad")
	waitUntil(t, "load error", func() bool { return env.ctrl.Err() != nil })

	msgs := env.ctrl.Messages()
	if len(msgs) != 1 || msgs[0].Content != "kept" {
		t.Errorf("failed load disturbed the transcript: %+v", msgs)
	}
}

// =============================================================================
// ERRORS
// =============================================================================

func TestSendFailureKeepsOptimisticMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chats/chat", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	env := newTestEnv(t, false, mux)
	env.nav.SetActiveChat("chat-a")
	env.ctrl.Send("doomed", nil)

	waitUntil(t, "send error", func() bool { return env.ctrl.Err() != nil })

	msgs := env.ctrl.Messages()
	if len(msgs) != 1 || msgs[0].Role != model.RoleUser || msgs[0].Content != "doomed" {
		t.Errorf("optimistic user message was rolled back: %+v", msgs)
	}
	if env.ctrl.Loading("chat-a") {
		t.Error("loading flag not cleared after failure")
	}

	env.ctrl.ClearErr()
	if env.ctrl.Err() != nil {
		t.Error("ClearErr() did not clear")
	}
}

// =============================================================================
// DELETION
// =============================================================================

func TestDeleteActiveChatResetsToNewChat(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chats/get_chat/c1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"role":"user","content":"bye"}]`))
	})
	mux.HandleFunc("/chats/delete_chat/c1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
	})

	env := newTestEnv(t, false, mux)
	env.ctrl.LoadSession("c1")
	waitUntil(t, "transcript", func() bool { return len(env.ctrl.Messages()) == 1 })

	before := env.nav.Snapshot().RefreshSeq
	if err := env.ctrl.DeleteChat(context.Background(), "c1"); err != nil {
		t.Fatalf("DeleteChat() error = %v", err)
	}

	if env.nav.ActiveChatID() != "" {
		t.Errorf("active chat = %q, want empty", env.nav.ActiveChatID())
	}
	if len(env.ctrl.Messages()) != 0 {
		t.Error("transcript should reset when the open chat is deleted")
	}
	if env.nav.Snapshot().RefreshSeq == before {
		t.Error("chat list refresh not signalled")
	}
}

func TestDeleteOtherChatKeepsView(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chats/get_chat/c1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"role":"user","content":"staying"}]`))
	})
	mux.HandleFunc("/chats/delete_chat/c2", func(w http.ResponseWriter, r *http.Request) {})

	env := newTestEnv(t, false, mux)
	env.ctrl.LoadSession("c1")
	waitUntil(t, "transcript", func() bool { return len(env.ctrl.Messages()) == 1 })

	if err := env.ctrl.DeleteChat(context.Background(), "c2"); err != nil {
		t.Fatalf("DeleteChat() error = %v", err)
	}
	if env.nav.ActiveChatID() != "c1" {
		t.Errorf("active chat = %q, want c1", env.nav.ActiveChatID())
	}
	if len(env.ctrl.Messages()) != 1 {
		t.Error("deleting another chat disturbed the open transcript")
	}
}

// =============================================================================
// SUGGESTED REPLIES
// =============================================================================

func TestOptionsFollowReplies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chats/chat", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"reply":   "pick one",
			"options": []string{"Yes", "No"},
		})
	})

	env := newTestEnv(t, true, mux)
	env.ctrl.Send("hi", nil)
	waitUntil(t, "options", func() bool { return len(env.ctrl.Options()) == 2 })

	// A new send clears the previous suggestions immediately.
	env.ctrl.SelectOption("Yes")
	waitUntil(t, "second reply", func() bool {
		return assistantCount(env.ctrl.Messages()) == 2
	})
	msgs := env.ctrl.Messages()
	if msgs[2].Content != "Yes" || msgs[2].Role != model.RoleUser {
		t.Errorf("selected option not sent as user message: %+v", msgs[2])
	}
}
