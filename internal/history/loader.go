// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"strings"

	"golang.org/x/time/rate"

	"parley/internal/api"
	"parley/internal/model"
)

// =============================================================================
// LOADER
// =============================================================================

// searchRate bounds backend search traffic from type-ahead input. Bursts of
// two let the first keystroke and a quick correction through immediately.
const (
	searchPerSecond = 4
	searchBurst     = 2
)

// Loader fetches the chat list, keeping the cache in sync and falling back
// to it when the backend is down.
type Loader struct {
	client  *api.Client
	cache   *Cache
	limiter *rate.Limiter
}

// NewLoader creates a loader. cache may be nil to disable offline fallback.
func NewLoader(client *api.Client, cache *Cache) *Loader {
	return &Loader{
		client:  client,
		cache:   cache,
		limiter: rate.NewLimiter(searchPerSecond, searchBurst),
	}
}

// List returns the user's conversations in backend order. When the backend
// is unreachable, the last cached list is returned instead; other errors
// pass through.
func (l *Loader) List(ctx context.Context, userID string) ([]model.SessionMeta, error) {
	metas, err := l.client.ListChats(ctx, userID)
	if err != nil {
		if api.IsUnreachable(err) && l.cache != nil {
			if cached, cacheErr := l.cache.List(userID); cacheErr == nil {
				return cached, nil
			}
		}
		return nil, err
	}
	if l.cache != nil {
		// Cache failures never break a successful listing.
		_ = l.cache.Replace(userID, metas)
	}
	return metas, nil
}

// Search queries the backend full-text search, rate limited for type-ahead
// use. An empty query is the full list.
func (l *Loader) Search(ctx context.Context, userID, query string) ([]model.SessionMeta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return l.List(ctx, userID)
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.client.SearchChats(ctx, userID, query)
}

// FilterLocal narrows metas to entries whose title or preview contains the
// query, case-insensitively. Used for instant feedback while the backend
// search is in flight.
func FilterLocal(metas []model.SessionMeta, query string) []model.SessionMeta {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return metas
	}
	var out []model.SessionMeta
	for _, m := range metas {
		if strings.Contains(strings.ToLower(m.Title), query) ||
			strings.Contains(strings.ToLower(m.Preview), query) {
			out = append(out, m)
		}
	}
	return out
}
