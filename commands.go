package aredis

import (
	"context"
	"strconv"
)

// Mechanical command wrappers: format argv, interpret the typed reply.
// Deliberately thin — they add no design of their own; organization and
// naming follow l00pss-redkit/commands.go, typed-reply handling follows
// xenking-redis's decode* helpers.

// Ping sends PING and expects a Status("PONG") reply.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.StringCommand(ctx, "PING")
	return err
}

// Get returns the string value of key, and ok=false for a missing key.
func (c *Client) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	r, err := c.StringCommand(ctx, "GET", key)
	if err != nil {
		return nil, false, err
	}
	if r.Kind == KindNil {
		return nil, false, nil
	}
	return r.Bytes, true, nil
}

// Set sets key to value and expects Status("OK").
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	_, err := c.Command(ctx, []byte("SET"), []byte(key), value)
	return err
}

// SetEX sets key to value with a TTL in seconds.
func (c *Client) SetEX(ctx context.Context, key string, seconds int64, value []byte) error {
	_, err := c.Command(ctx, []byte("SETEX"), []byte(key), []byte(strconv.FormatInt(seconds, 10)), value)
	return err
}

// Del deletes keys and returns the number removed.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	r, err := c.StringCommand(ctx, append([]string{"DEL"}, keys...)...)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// Exists reports how many of keys are present.
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	r, err := c.StringCommand(ctx, append([]string{"EXISTS"}, keys...)...)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// Expire sets a TTL in seconds on key.
func (c *Client) Expire(ctx context.Context, key string, seconds int64) (bool, error) {
	r, err := c.StringCommand(ctx, "EXPIRE", key, strconv.FormatInt(seconds, 10))
	if err != nil {
		return false, err
	}
	return r.Int == 1, nil
}

// TTL returns the remaining time to live in seconds, or -1/-2 per Redis
// semantics (no TTL / key absent).
func (c *Client) TTL(ctx context.Context, key string) (int64, error) {
	r, err := c.StringCommand(ctx, "TTL", key)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// Incr increments key by one.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	r, err := c.StringCommand(ctx, "INCR", key)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// IncrBy increments key by delta.
func (c *Client) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	r, err := c.StringCommand(ctx, "INCRBY", key, strconv.FormatInt(delta, 10))
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// Append appends value to key, returning the new length.
func (c *Client) Append(ctx context.Context, key string, value []byte) (int64, error) {
	r, err := c.Command(ctx, []byte("APPEND"), []byte(key), value)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// MGet returns values for keys, nil entries marking a missing key.
func (c *Client) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	r, err := c.StringCommand(ctx, append([]string{"MGET"}, keys...)...)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(r.Array))
	for i, e := range r.Array {
		if e.Kind != KindNil {
			out[i] = e.Bytes
		}
	}
	return out, nil
}

// MSet sets multiple key/value pairs atomically.
func (c *Client) MSet(ctx context.Context, pairs map[string][]byte) error {
	argv := make([][]byte, 0, 1+len(pairs)*2)
	argv = append(argv, []byte("MSET"))
	for k, v := range pairs {
		argv = append(argv, []byte(k), v)
	}
	_, err := c.Command(ctx, argv...)
	return err
}

// HGet returns a hash field's value.
func (c *Client) HGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	r, err := c.StringCommand(ctx, "HGET", key, field)
	if err != nil {
		return nil, false, err
	}
	if r.Kind == KindNil {
		return nil, false, nil
	}
	return r.Bytes, true, nil
}

// HSet sets a hash field's value.
func (c *Client) HSet(ctx context.Context, key, field string, value []byte) error {
	_, err := c.Command(ctx, []byte("HSET"), []byte(key), []byte(field), value)
	return err
}

// HDel deletes hash fields, returning the number removed.
func (c *Client) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	r, err := c.StringCommand(ctx, append([]string{"HDEL", key}, fields...)...)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// HGetAll returns a hash's fields and values, flattened field/value pairs.
func (c *Client) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	r, err := c.StringCommand(ctx, "HGETALL", key)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(r.Array)/2)
	for i := 0; i+1 < len(r.Array); i += 2 {
		out[string(r.Array[i].Bytes)] = r.Array[i+1].Bytes
	}
	return out, nil
}

// HIncrBy increments a hash field by delta.
func (c *Client) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	r, err := c.StringCommand(ctx, "HINCRBY", key, field, strconv.FormatInt(delta, 10))
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// LPush prepends values onto a list, returning the new length.
func (c *Client) LPush(ctx context.Context, key string, values ...[]byte) (int64, error) {
	argv := append([][]byte{[]byte("LPUSH"), []byte(key)}, values...)
	r, err := c.Command(ctx, argv...)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// RPush appends values onto a list, returning the new length.
func (c *Client) RPush(ctx context.Context, key string, values ...[]byte) (int64, error) {
	argv := append([][]byte{[]byte("RPUSH"), []byte(key)}, values...)
	r, err := c.Command(ctx, argv...)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// LPop pops the head of a list.
func (c *Client) LPop(ctx context.Context, key string) ([]byte, bool, error) {
	r, err := c.StringCommand(ctx, "LPOP", key)
	if err != nil {
		return nil, false, err
	}
	if r.Kind == KindNil {
		return nil, false, nil
	}
	return r.Bytes, true, nil
}

// RPop pops the tail of a list.
func (c *Client) RPop(ctx context.Context, key string) ([]byte, bool, error) {
	r, err := c.StringCommand(ctx, "RPOP", key)
	if err != nil {
		return nil, false, err
	}
	if r.Kind == KindNil {
		return nil, false, nil
	}
	return r.Bytes, true, nil
}

// LRange returns list elements in [start, stop].
func (c *Client) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	r, err := c.StringCommand(ctx, "LRANGE", key, strconv.FormatInt(start, 10), strconv.FormatInt(stop, 10))
	if err != nil {
		return nil, err
	}
	return bytesArray(r), nil
}

// LLen returns a list's length.
func (c *Client) LLen(ctx context.Context, key string) (int64, error) {
	r, err := c.StringCommand(ctx, "LLEN", key)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// SAdd adds members to a set, returning the number actually added.
func (c *Client) SAdd(ctx context.Context, key string, members ...[]byte) (int64, error) {
	argv := append([][]byte{[]byte("SADD"), []byte(key)}, members...)
	r, err := c.Command(ctx, argv...)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// SRem removes members from a set, returning the number actually removed.
func (c *Client) SRem(ctx context.Context, key string, members ...[]byte) (int64, error) {
	argv := append([][]byte{[]byte("SREM"), []byte(key)}, members...)
	r, err := c.Command(ctx, argv...)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// SIsMember reports set membership.
func (c *Client) SIsMember(ctx context.Context, key string, member []byte) (bool, error) {
	r, err := c.Command(ctx, []byte("SISMEMBER"), []byte(key), member)
	if err != nil {
		return false, err
	}
	return r.Int == 1, nil
}

// SMembers returns all members of a set.
func (c *Client) SMembers(ctx context.Context, key string) ([][]byte, error) {
	r, err := c.StringCommand(ctx, "SMEMBERS", key)
	if err != nil {
		return nil, err
	}
	return bytesArray(r), nil
}

// ZAdd adds a scored member to a sorted set.
func (c *Client) ZAdd(ctx context.Context, key string, score float64, member []byte) (int64, error) {
	r, err := c.Command(ctx, []byte("ZADD"), []byte(key), []byte(strconv.FormatFloat(score, 'f', -1, 64)), member)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// ZScore returns a sorted-set member's score.
func (c *Client) ZScore(ctx context.Context, key string, member []byte) (float64, bool, error) {
	r, err := c.Command(ctx, []byte("ZSCORE"), []byte(key), member)
	if err != nil {
		return 0, false, err
	}
	if r.Kind == KindNil {
		return 0, false, nil
	}
	score, err := strconv.ParseFloat(string(r.Bytes), 64)
	return score, true, err
}

// ZRange returns sorted-set members in rank range [start, stop].
func (c *Client) ZRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	r, err := c.StringCommand(ctx, "ZRANGE", key, strconv.FormatInt(start, 10), strconv.FormatInt(stop, 10))
	if err != nil {
		return nil, err
	}
	return bytesArray(r), nil
}

// ZRem removes members from a sorted set.
func (c *Client) ZRem(ctx context.Context, key string, members ...[]byte) (int64, error) {
	argv := append([][]byte{[]byte("ZREM"), []byte(key)}, members...)
	r, err := c.Command(ctx, argv...)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

// Select switches the active logical database.
func (c *Client) Select(ctx context.Context, db int) error {
	_, err := c.StringCommand(ctx, "SELECT", strconv.Itoa(db))
	return err
}

// FlushDB clears the active logical database.
func (c *Client) FlushDB(ctx context.Context) error {
	_, err := c.StringCommand(ctx, "FLUSHDB")
	return err
}

// Publish is an ordinary command: publishes message to channel and returns
// the number of subscribers that received it.
func (c *Client) Publish(ctx context.Context, channel string, message []byte) (int64, error) {
	r, err := c.Command(ctx, []byte("PUBLISH"), []byte(channel), message)
	if err != nil {
		return 0, err
	}
	return r.Int, nil
}

func bytesArray(r ReplyMessage) [][]byte {
	out := make([][]byte, len(r.Array))
	for i, e := range r.Array {
		out[i] = e.Bytes
	}
	return out
}
