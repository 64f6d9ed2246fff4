// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"sync"

	"parley/internal/api"
	"parley/internal/localstore"
	"parley/internal/model"
	"parley/internal/nav"
)

// =============================================================================
// CONTROLLER
// =============================================================================

// titleMaxRunes bounds the title derived from the first user message.
const titleMaxRunes = 40

// Controller drives the conversation on screen. It is safe for concurrent
// use; all blocking work runs in goroutines it spawns, and completions are
// reconciled against the live navigation state before they touch anything.
type Controller struct {
	mu sync.Mutex

	client *api.Client
	store  *localstore.Store
	nav    *nav.Store
	emit   func(Event)

	messages []model.Message
	session  *model.ChatSession
	options  []string
	err      error

	// loading is keyed by conversation (NewChatKey for the uncreated one)
	// so a pending send in one chat never lights up another.
	loading map[string]bool

	// inputCentered places the composer in the middle of an empty screen.
	// It flips to the docked position on the first send and stays there for
	// the rest of the conversation.
	inputCentered bool

	sends *cancelRegistry

	loadMu     sync.Mutex
	loadCancel context.CancelFunc
	loadSeq    uint64
}

// NewController creates a controller. emit may be nil when no UI is
// attached (e.g. the plain REPL polls state instead).
func NewController(client *api.Client, store *localstore.Store, navStore *nav.Store, emit func(Event)) *Controller {
	if emit == nil {
		emit = func(Event) {}
	}
	return &Controller{
		client:        client,
		store:         store,
		nav:           navStore,
		emit:          emit,
		loading:       make(map[string]bool),
		inputCentered: true,
		sends:         newCancelRegistry(),
	}
}

// =============================================================================
// STATE ACCESSORS
// =============================================================================

// Messages returns a copy of the transcript on screen.
func (c *Controller) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Session returns a copy of the current session record, or nil on the
// new-chat screen (and always for guests, whose conversations never get one).
func (c *Controller) Session() *model.ChatSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Loading reports whether a send is pending for the given conversation key.
func (c *Controller) Loading(chatKey string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading[chatKey]
}

// LoadingActive reports whether the conversation on screen has a pending
// send. This is the flag the spinner follows.
func (c *Controller) LoadingActive() bool {
	key := Key(c.nav.ActiveChatID())
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading[key]
}

// Options returns the current suggested replies.
func (c *Controller) Options() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.options))
	copy(out, c.options)
	return out
}

// Err returns the last request error, or nil. Cancellations never land here.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ClearErr dismisses the error banner.
func (c *Controller) ClearErr() {
	c.mu.Lock()
	c.err = nil
	c.mu.Unlock()
	c.emit(Event{Kind: EventError})
}

// InputCentered reports whether the composer should render centered.
func (c *Controller) InputCentered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputCentered
}

// =============================================================================
// SEND
// =============================================================================

// Send dispatches one user message for the conversation on screen. The user
// message is appended optimistically before the network round trip and is
// never rolled back, even on failure. Empty messages with no attachments are
// ignored.
//
// The active conversation id is captured exactly once, here. Everything the
// completion does is judged against that captured value.
func (c *Controller) Send(text string, attachments []model.FileAttachment) {
	text = strings.TrimSpace(text)
	if text == "" && len(attachments) == 0 {
		return
	}

	requestChatID := c.nav.ActiveChatID()
	chatKey := Key(requestChatID)

	ctx, cancel := context.WithCancel(context.Background())
	seq := c.sends.begin(chatKey, cancel)

	userMsg := model.NewUserMessage(text, attachments)

	c.mu.Lock()
	c.messages = append(c.messages, userMsg)
	c.loading[chatKey] = true
	c.options = nil
	c.inputCentered = false
	c.mu.Unlock()

	c.emit(Event{Kind: EventMessages})
	c.emit(Event{Kind: EventLoading, ChatKey: chatKey})
	c.emit(Event{Kind: EventOptions})

	go c.send(ctx, chatKey, seq, requestChatID, text, userMsg)
}

func (c *Controller) send(ctx context.Context, chatKey string, seq uint64, requestChatID, text string, userMsg model.Message) {
	guest := c.store.GuestMode() || c.store.User() == nil

	var userID string
	if u := c.store.User(); u != nil {
		userID = u.UserID
	} else {
		userID = "guest"
	}

	// Guests send a null session id and never create one. Authenticated
	// users sending from the new-chat screen create the session first,
	// inside the same cancel scope as the send itself.
	var sessionID *string
	resolvedID := requestChatID
	if !guest {
		if requestChatID == "" {
			created, err := c.client.CreateChat(ctx, userID)
			if err != nil {
				c.finishWithError(chatKey, seq, err)
				return
			}
			resolvedID = created
		}
		sessionID = &resolvedID
	}

	result, err := c.client.SendMessage(ctx, userID, text, sessionID)
	if err != nil {
		c.finishWithError(chatKey, seq, err)
		return
	}

	current := c.sends.finish(chatKey, seq)

	c.mu.Lock()
	if current {
		c.loading[chatKey] = false
	}

	// The user may have navigated away while this request was in flight.
	// The captured id decides: a mismatch with the live one means these
	// results belong to a conversation no longer on screen, and they are
	// dropped without touching the transcript.
	if c.nav.ActiveChatID() != requestChatID {
		c.mu.Unlock()
		c.emit(Event{Kind: EventLoading, ChatKey: chatKey})
		return
	}

	reply := model.NewAssistantMessage(result.Reply)
	reply.Attachment = result.Attachment
	if result.Attachment != nil {
		reply.Type = model.MessageFile
	}
	c.messages = append(c.messages, reply)
	c.options = result.Options
	c.err = nil

	if !guest {
		if c.session == nil || c.session.ID != resolvedID {
			c.session = &model.ChatSession{
				ID:        resolvedID,
				Title:     userMsg.Preview(titleMaxRunes),
				CreatedAt: userMsg.Timestamp,
			}
		}
		c.session.Messages = append([]model.Message(nil), c.messages...)
		c.session.UpdatedAt = reply.Timestamp
	}
	c.mu.Unlock()

	c.emit(Event{Kind: EventLoading, ChatKey: chatKey})
	c.emit(Event{Kind: EventMessages})
	c.emit(Event{Kind: EventOptions})
	c.emit(Event{Kind: EventSession})

	if !guest {
		// Adopt the id the backend assigned to a chat created by this
		// send. Guests never get here: their conversations have no id and
		// the active chat id stays empty for the whole visit.
		if requestChatID == "" {
			c.nav.SetActiveChat(resolvedID)
			_ = c.store.SetActiveChatID(resolvedID)
		}
		// Either way the chat list ordering changed.
		c.nav.RefreshChatList()
	}
}

// finishWithError records a failed send. Cancellation is not an error: it
// means a newer action superseded this request on purpose, so nothing is
// reported and nothing is touched.
func (c *Controller) finishWithError(chatKey string, seq uint64, err error) {
	if api.IsCanceled(err) {
		return
	}
	current := c.sends.finish(chatKey, seq)

	c.mu.Lock()
	if current {
		c.loading[chatKey] = false
	}
	c.err = err
	c.mu.Unlock()

	c.emit(Event{Kind: EventLoading, ChatKey: chatKey})
	c.emit(Event{Kind: EventError})
}

// =============================================================================
// LOAD SESSION
// =============================================================================

// LoadSession opens a conversation from the sidebar. Navigation switches
// immediately; the transcript arrives asynchronously. Rapid selections race
// harmlessly: each load supersedes the previous one, and only the latest may
// replace the transcript.
func (c *Controller) LoadSession(chatID string) {
	c.nav.SetActiveChat(chatID)
	_ = c.store.SetActiveChatID(chatID)

	c.loadMu.Lock()
	if c.loadCancel != nil {
		c.loadCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.loadCancel = cancel
	c.loadSeq++
	seq := c.loadSeq
	c.loadMu.Unlock()

	go c.loadSession(ctx, seq, chatID)
}

func (c *Controller) loadSession(ctx context.Context, seq uint64, chatID string) {
	messages, err := c.client.GetChat(ctx, chatID)

	c.loadMu.Lock()
	superseded := seq != c.loadSeq
	if !superseded {
		c.loadCancel()
		c.loadCancel = nil
	}
	c.loadMu.Unlock()
	if superseded || api.IsCanceled(err) {
		return
	}

	if err != nil {
		// A malformed or failed load leaves the current transcript alone.
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		c.emit(Event{Kind: EventError})
		return
	}

	title := ""
	for _, m := range messages {
		if m.Role == model.RoleUser {
			title = m.Preview(titleMaxRunes)
			break
		}
	}

	c.mu.Lock()
	c.messages = messages
	c.session = model.SessionFromMessages(chatID, title, messages)
	c.options = nil
	c.err = nil
	c.inputCentered = false
	c.mu.Unlock()

	c.emit(Event{Kind: EventMessages})
	c.emit(Event{Kind: EventSession})
	c.emit(Event{Kind: EventOptions})
}

// =============================================================================
// NEW CHAT
// =============================================================================

// NewChat abandons whatever is pending and returns to the new-chat screen.
// Every in-flight send is cancelled, in every conversation, so nothing
// started earlier can write into the fresh state.
func (c *Controller) NewChat() {
	c.sends.cancelAll()

	c.loadMu.Lock()
	if c.loadCancel != nil {
		c.loadCancel()
		c.loadCancel = nil
	}
	c.loadSeq++
	c.loadMu.Unlock()

	c.mu.Lock()
	c.messages = nil
	c.session = nil
	c.options = nil
	c.err = nil
	c.loading = make(map[string]bool)
	c.inputCentered = true
	c.mu.Unlock()

	c.nav.ClearActiveChat()
	_ = c.store.ClearActiveChatID()

	c.emit(Event{Kind: EventReset})
}

// =============================================================================
// DELETE CHAT
// =============================================================================

// DeleteChat removes a conversation on the backend. Deleting the one on
// screen also resets to the new-chat screen. The chat list is refreshed in
// either case.
func (c *Controller) DeleteChat(ctx context.Context, chatID string) error {
	if err := c.client.DeleteChat(ctx, chatID); err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		c.emit(Event{Kind: EventError})
		return err
	}

	c.sends.cancelKey(Key(chatID))

	if c.nav.ActiveChatID() == chatID {
		c.NewChat()
	}
	c.nav.RefreshChatList()
	return nil
}

// =============================================================================
// SUGGESTED REPLIES
// =============================================================================

// SelectOption sends one of the suggested replies as a regular message.
func (c *Controller) SelectOption(text string) {
	c.Send(text, nil)
}
