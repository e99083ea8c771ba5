package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CodeKeyPrefix is the key prefix for one-time login codes
	CodeKeyPrefix = "logincode:"

	// CodeTTL bounds how long an unconsumed code stays valid.
	// The codes previously lived in process memory forever; a TTL closes that
	// gap without changing the flow.
	CodeTTL = 10 * time.Minute
)

// CodeRegistry stores one-time login codes keyed by the user's canonical
// email. One entry per email: storing again overwrites any prior unconsumed
// code. Using an interface enables testing with an in-memory fake.
type CodeRegistry interface {
	// Store saves the code for the email, replacing any previous one.
	Store(ctx context.Context, email, code string) error

	// Consume compares the supplied code with the stored one and deletes the
	// entry on a match, in one atomic step. Returns false on mismatch or when
	// no code is stored; a mismatch leaves the stored code in place.
	Consume(ctx context.Context, email, code string) (bool, error)
}

// consumeScript deletes the key only when its value equals the supplied code.
// GET+DEL as a script keeps compare and delete atomic, so of two concurrent
// verification attempts with the correct code at most one can win.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCodeRegistry implements CodeRegistry on Redis.
// Redis is shared process-wide and safe for interleaved read/write/delete
// from concurrent requests; two concurrent Store calls for the same user race
// to overwrite the single key and last write wins, which is acceptable because
// the registry is a convenience cache, not a source of truth.
type RedisCodeRegistry struct {
	client *redis.Client
}

// NewRedisCodeRegistry creates a CodeRegistry backed by Redis.
func NewRedisCodeRegistry(client *redis.Client) CodeRegistry {
	return &RedisCodeRegistry{client: client}
}

func codeKey(email string) string {
	return CodeKeyPrefix + email
}

// Store writes the code with a TTL. SET replaces any existing value, so a
// re-send invalidates the previous code.
func (r *RedisCodeRegistry) Store(ctx context.Context, email, code string) error {
	if err := r.client.Set(ctx, codeKey(email), code, CodeTTL).Err(); err != nil {
		return fmt.Errorf("store login code: %w", err)
	}
	return nil
}

// Consume runs the compare-and-delete script. A deleted key counts as a
// mismatch: an expired or already-consumed code never verifies again.
func (r *RedisCodeRegistry) Consume(ctx context.Context, email, code string) (bool, error) {
	res, err := consumeScript.Run(ctx, r.client, []string{codeKey(email)}, code).Int()
	if err != nil {
		return false, fmt.Errorf("consume login code: %w", err)
	}
	return res == 1, nil
}
