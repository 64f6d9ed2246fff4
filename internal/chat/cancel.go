// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
)

// =============================================================================
// PER-CONVERSATION CANCEL REGISTRY
// =============================================================================

// NewChatKey is the registry key for a conversation that has not been
// created on the backend yet. The first send from the new-chat screen runs
// under this key until the backend assigns an id.
const NewChatKey = "new"

// Key maps a conversation id to its registry key.
func Key(chatID string) string {
	if chatID == "" {
		return NewChatKey
	}
	return chatID
}

// sendHandle identifies one in-flight send. The seq lets a completing
// request tell whether it is still the current one for its key, so a
// superseded request never clears state owned by its successor.
type sendHandle struct {
	cancel context.CancelFunc
	seq    uint64
}

// cancelRegistry tracks the in-flight send for each conversation key with
// mutex protection. Starting a new send for a key aborts the previous one;
// sends in different conversations proceed independently.
type cancelRegistry struct {
	mu      sync.Mutex
	sends   map[string]sendHandle
	nextSeq uint64
}

func newCancelRegistry() *cancelRegistry {
	return &cancelRegistry{sends: make(map[string]sendHandle)}
}

// begin cancels any in-flight send for key, registers cancel as the new one,
// and returns the sequence number identifying this send.
func (r *cancelRegistry) begin(key string, cancel context.CancelFunc) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.sends[key]; ok {
		prev.cancel()
	}
	r.nextSeq++
	r.sends[key] = sendHandle{cancel: cancel, seq: r.nextSeq}
	return r.nextSeq
}

// finish removes the handle for key if seq still identifies the current
// send. It reports whether this send was the current one.
func (r *cancelRegistry) finish(key string, seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.sends[key]
	if !ok || h.seq != seq {
		return false
	}
	h.cancel()
	delete(r.sends, key)
	return true
}

// cancelAll aborts every in-flight send. Used when starting a new chat.
func (r *cancelRegistry) cancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, h := range r.sends {
		h.cancel()
		delete(r.sends, key)
	}
}

// cancelKey aborts the in-flight send for one conversation, if any.
func (r *cancelRegistry) cancelKey(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.sends[key]; ok {
		h.cancel()
		delete(r.sends, key)
	}
}
