// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package symmetry

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
	"github.com/jaroslavh/Nemea-Modules/internal/logging"
)

// redisTTL bounds how long a witness entry survives in Redis once a
// process stops refreshing it, so a decommissioned watched prefix
// doesn't leave permanent state behind.
const redisTTL = 48 * time.Hour

// RedisStore is an optional persistence tier for the symmetry map,
// so witnessed links survive a restart. Failures are logged and never
// change a filter's verdict — persistence is a durability nicety, not
// part of the detection contract.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *logging.Logger
	ctx    context.Context
}

// NewRedisStore wraps an existing Redis client. prefix namespaces keys
// (e.g. "sym:v4:" vs "sym:v6:") so both families can share one client.
func NewRedisStore(client *redis.Client, prefix string, logger *logging.Logger) *RedisStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger, ctx: context.Background()}
}

func (s *RedisStore) key(addr ipaddr.Address) string {
	return s.prefix + addr.String()
}

// Get looks up a witness entry, decoding the 12-byte encoding written
// by Set (8 bytes link mask + 4 bytes last-seen, big-endian).
func (s *RedisStore) Get(addr ipaddr.Address) (Entry, bool) {
	raw, err := s.client.Get(s.ctx, s.key(addr)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("symmetry redis get failed", "error", err)
		}
		return Entry{}, false
	}
	if len(raw) != 12 {
		return Entry{}, false
	}
	return Entry{
		LinkMask: binary.BigEndian.Uint64(raw[0:8]),
		LastSeen: binary.BigEndian.Uint32(raw[8:12]),
	}, true
}

// Set writes back the entry, best-effort.
func (s *RedisStore) Set(addr ipaddr.Address, e Entry) {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint64(buf[0:8], e.LinkMask)
	binary.BigEndian.PutUint32(buf[8:12], e.LastSeen)
	if err := s.client.Set(s.ctx, s.key(addr), buf, redisTTL).Err(); err != nil {
		s.logger.Warn("symmetry redis set failed", "error", err)
	}
}
