package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/GetStream/pairchat/chat"
)

// Redis caches the most recent messages of every pair and fans out change
// notifications.
type Redis struct {
	cli *redis.Client
}

// Connect connects to the Redis server and pings the server to ensure the
// connection is working.
func Connect(ctx context.Context, addr string) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{
		cli: cli,
	}, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.cli.Close()
}

const maxSize = 50

func messagesKey(pairCode string) string {
	return fmt.Sprintf("pairs:%s:messages", pairCode)
}

func changesChannel(pairCode string) string {
	return fmt.Sprintf("pairs:%s:changes", pairCode)
}

// ListMessages returns the cached messages of a pair sorted by timestamp,
// oldest first.
func (r *Redis) ListMessages(ctx context.Context, pairCode string) ([]chat.Document, error) {
	keys, err := r.cli.ZRangeByScore(ctx, messagesKey(pairCode), &redis.ZRangeBy{
		Min: "-inf",
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange: %w", err)
	}

	out := make([]chat.Document, 0, len(keys))
	for _, key := range keys {
		var msg message
		if err := r.cli.HGetAll(ctx, key).Scan(&msg); err != nil {
			return nil, fmt.Errorf("hgetall: %w", err)
		}
		if msg.ID == "" {
			// Hash evicted between ZRANGE and HGETALL.
			continue
		}
		out = append(out, msg.Document())
	}

	return out, nil
}

// InsertMessage adds the message to Redis with pairs:PAIR:messages:ID as the
// key and adds the key to the pair's sorted set.
func (r *Redis) InsertMessage(ctx context.Context, pairCode string, msg chat.Message) error {
	m := &message{
		ID:        msg.ID,
		Text:      msg.Text,
		Sender:    msg.Sender,
		Timestamp: msg.Timestamp.UnixMicro(),
	}
	setKey := messagesKey(pairCode)

	err := r.cli.Watch(ctx, func(tx *redis.Tx) error {
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			key := fmt.Sprintf("%s:%s", setKey, m.ID)
			pipe.HSet(ctx, key, m)
			pipe.ZAdd(ctx, setKey, redis.Z{
				Score:  float64(m.Timestamp),
				Member: key,
			})
			return nil
		})
		return err
	}, setKey)

	if err != nil {
		return fmt.Errorf("redis insert message: %w", err)
	}

	if err := r.evictOldest(ctx, setKey); err != nil {
		return fmt.Errorf("evict oldest: %w", err)
	}
	return nil
}

func (r *Redis) evictOldest(ctx context.Context, setKey string) error {
	vals, err := r.cli.ZRange(ctx, setKey, 0, int64(-maxSize-1)).Result()
	if err != nil {
		return fmt.Errorf("zrange: %w", err)
	}

	for _, key := range vals {
		_ = r.cli.ZRem(ctx, setKey, key).Err()
		_ = r.cli.Del(ctx, key).Err()
	}

	return nil
}

// Publish notifies the subscribers of a pair that messageID was added.
func (r *Redis) Publish(ctx context.Context, pairCode, messageID string) error {
	if err := r.cli.Publish(ctx, changesChannel(pairCode), messageID).Err(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Subscribe returns a channel receiving the id of every message published for
// the pair. The returned function stops the subscription and closes the
// channel.
func (r *Redis) Subscribe(ctx context.Context, pairCode string) (<-chan string, func() error, error) {
	ps := r.cli.Subscribe(ctx, changesChannel(pairCode))
	// Wait for the confirmation so no publish is missed after we return.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, ps.Close, nil
}
