// Package store persists the bits of bot state worth keeping across
// restarts in a single BoltDB file: per-guild overrides and the
// resolution source cache. Callers treat every failure here as
// non-fatal; the bot runs fine from an empty store.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/rs/zerolog"

	"jukebot/pkg/types"
)

var (
	bucketGuildSettings = []byte("guild_settings")
	bucketSourceCache   = []byte("source_cache")
)

// GuildSettings are the per-guild resolver overrides a moderator can
// set. Zero values mean "use the bot defaults".
type GuildSettings struct {
	// Primary backend override; empty uses the configured primary.
	Primary string `json:"primary,omitempty"`
	// HedgeDelayMS override; nil uses the configured delay.
	HedgeDelayMS *int `json:"hedge_delay_ms,omitempty"`
}

type cacheRecord struct {
	Backend  string    `json:"backend"`
	StoredAt time.Time `json:"stored_at"`
}

// Store wraps the bolt handle. Open creates the file and buckets;
// methods are safe for concurrent use (bolt serializes writers).
type Store struct {
	db  *bolt.DB
	log zerolog.Logger
}

// Open opens or creates the store file and ensures both buckets exist.
func Open(path string, logger *zerolog.Logger) (*Store, error) {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketGuildSettings, bucketSourceCache} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Debug().Str("path", path).Msg("store opened")
	return &Store{db: db, log: log}, nil
}

// Close releases the file lock.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the backing file path.
func (s *Store) Path() string { return s.db.Path() }

// GetGuildSettings returns the stored overrides for a guild. A missing
// guild is not an error and yields the zero value.
func (s *Store) GetGuildSettings(guildID string) (GuildSettings, error) {
	var gs GuildSettings
	if guildID == "" {
		return gs, fmt.Errorf("empty guild id")
	}
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketGuildSettings).Get([]byte(guildID))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &gs)
	})
	if err != nil {
		return GuildSettings{}, fmt.Errorf("get guild settings %s: %w", guildID, err)
	}
	return gs, nil
}

// PutGuildSettings stores the overrides for a guild.
func (s *Store) PutGuildSettings(guildID string, gs GuildSettings) error {
	if guildID == "" {
		return fmt.Errorf("empty guild id")
	}
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("marshal guild settings: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketGuildSettings).Put([]byte(guildID), data)
	})
	if err != nil {
		return fmt.Errorf("put guild settings %s: %w", guildID, err)
	}
	return nil
}

// LoadSourceCache returns every persisted cache entry. Rows that fail
// to decode or name an unknown backend are skipped, not fatal, so one
// bad row cannot poison a restart.
func (s *Store) LoadSourceCache() (map[string]types.BackendID, error) {
	out := make(map[string]types.BackendID)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSourceCache).ForEach(func(k, v []byte) error {
			var rec cacheRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				s.log.Warn().Str("query", string(k)).Err(err).Msg("skipping undecodable cache row")
				return nil
			}
			id := types.BackendID(rec.Backend)
			if !id.Valid() {
				return nil
			}
			out[string(k)] = id
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load source cache: %w", err)
	}
	return out, nil
}

// SaveSourceCacheEntry upserts one winner row.
func (s *Store) SaveSourceCacheEntry(query string, backend types.BackendID) error {
	if query == "" {
		return fmt.Errorf("empty query")
	}
	data, err := json.Marshal(cacheRecord{Backend: string(backend), StoredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSourceCache).Put([]byte(query), data)
	})
	if err != nil {
		return fmt.Errorf("save cache entry %q: %w", query, err)
	}
	return nil
}
