package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mesalink/mesalink/utils"
)

const (
	sessionStoragePrefix = "mesalink-table-session"
	// Margin subtracted from the stored expiry so the token is renewed
	// slightly before it actually lapses.
	sessionBuffer = time.Minute
)

// StoredSession is the cached token record, keyed by table id.
// ExpiresAtMs mirrors ExpiresAt for cheap comparisons and survives
// even when the RFC3339 string fails to parse.
type StoredSession struct {
	SessionToken string `json:"sessionToken"`
	ExpiresAt    string `json:"expiresAt"`
	ExpiresAtMs  int64  `json:"expiresAtMs"`
}

// SessionCache avoids redundant ensure calls and recovers the token
// for order submission when the page flow lost it.
type SessionCache struct {
	storage Storage
	api     *API
	now     func() time.Time
}

func NewSessionCache(storage Storage, api *API) *SessionCache {
	return &SessionCache{storage: storage, api: api, now: time.Now}
}

func sessionKey(tableID string) string {
	return sessionStoragePrefix + ":" + tableID
}

func (sc *SessionCache) readStored(tableID string) *StoredSession {
	raw, ok := sc.storage.Get(sessionKey(tableID))
	if !ok {
		return nil
	}
	var stored StoredSession
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		// corrupt entries behave as absent
		return nil
	}
	if stored.SessionToken == "" || stored.ExpiresAt == "" {
		return nil
	}
	if stored.ExpiresAtMs == 0 {
		parsed, err := time.Parse(time.RFC3339, stored.ExpiresAt)
		if err != nil {
			return nil
		}
		stored.ExpiresAtMs = parsed.UnixMilli()
	}
	return &stored
}

func (sc *SessionCache) persist(tableID string, resp *SessionResponse) *StoredSession {
	record := StoredSession{
		SessionToken: resp.SessionToken,
		ExpiresAt:    resp.ExpiresAt,
	}
	if parsed, err := time.Parse(time.RFC3339, resp.ExpiresAt); err == nil {
		record.ExpiresAtMs = parsed.UnixMilli()
	} else {
		record.ExpiresAtMs = sc.now().Add(sessionBuffer).UnixMilli()
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return &record
	}
	if err := sc.storage.Set(sessionKey(tableID), string(raw)); err != nil {
		utils.ErrorLogger.Printf("session cache: persist failed for table %s: %v", tableID, err)
	}
	return &record
}

// GetValid returns the cached token only while the clock is strictly
// before the cached expiry. No network call is ever made here.
func (sc *SessionCache) GetValid(tableID string) string {
	stored := sc.readStored(tableID)
	if stored == nil {
		return ""
	}
	if sc.now().UnixMilli() >= stored.ExpiresAtMs {
		return ""
	}
	return stored.SessionToken
}

type EnsureOptions struct {
	ForceRefresh bool
	Persistent   bool
}

// Ensure returns a usable session for the table: the cached one when
// still comfortably valid, otherwise a fresh grant from the server.
// On transient network failure the last-known cached value is returned
// (possibly expired) rather than blocking the caller; nil comes back
// only when nothing is cached and the call failed, or when ctx was
// cancelled mid-flight. Cancelled calls never mutate the cache.
func (sc *SessionCache) Ensure(ctx context.Context, restaurantID, tableID string, opts EnsureOptions) *StoredSession {
	existing := sc.readStored(tableID)
	stillValid := existing != nil &&
		sc.now().Add(sessionBuffer).UnixMilli() < existing.ExpiresAtMs

	if stillValid && !opts.ForceRefresh {
		return existing
	}

	resp, err := sc.api.EnsureSession(ctx, restaurantID, tableID, opts.Persistent)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		utils.ErrorLogger.Printf("session cache: ensure failed for table %s: %v", tableID, err)
		return existing
	}

	return sc.persist(tableID, resp)
}
