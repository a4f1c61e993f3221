package redis

import (
	"strings"

	"github.com/redis/go-redis/v9"
)

// Client wraps redis.UniversalClient so repositories depend on this package
type Client interface {
	redis.UniversalClient
}

// Keyspace scopes keys to one server shard, e.g. "sv_global:battle:<id>".
// Every repository builds its keys through one so shards never collide.
type Keyspace string

// Key joins parts under the keyspace prefix
func (k Keyspace) Key(parts ...string) string {
	return string(k) + ":" + strings.Join(parts, ":")
}
