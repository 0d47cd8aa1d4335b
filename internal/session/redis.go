package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps the session in a redis hash and broadcasts every
// change on a pub/sub channel, so separate processes sharing the same
// session see logins and logouts from each other. Last write wins.
type RedisBackend struct {
	client  *redis.Client
	key     string
	channel string
}

type RedisConfig struct {
	URL     string
	Key     string
	Channel string
}

func NewRedisBackend(cfg RedisConfig) (*RedisBackend, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = "healthcompare:session"
	}
	channel := cfg.Channel
	if channel == "" {
		channel = key + ":events"
	}

	return &RedisBackend{client: client, key: key, channel: channel}, nil
}

func (b *RedisBackend) Load(ctx context.Context) (map[string]string, error) {
	snapshot, err := b.client.HGetAll(ctx, b.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session from redis: %w", err)
	}
	return snapshot, nil
}

func (b *RedisBackend) Store(ctx context.Context, snapshot map[string]string) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	fields := make([]interface{}, 0, len(snapshot)*2)
	for k, v := range snapshot {
		fields = append(fields, k, v)
	}

	pipe := b.client.TxPipeline()
	pipe.Del(ctx, b.key)
	if len(fields) > 0 {
		pipe.HSet(ctx, b.key, fields...)
	}
	pipe.Publish(ctx, b.channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

func (b *RedisBackend) Clear(ctx context.Context) error {
	pipe := b.client.TxPipeline()
	pipe.Del(ctx, b.key)
	pipe.Publish(ctx, b.channel, []byte("{}"))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear session in redis: %w", err)
	}
	return nil
}

// Watch subscribes to the session channel and delivers each published
// snapshot until ctx is done.
func (b *RedisBackend) Watch(ctx context.Context) (<-chan map[string]string, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	out := make(chan map[string]string, 16)

	go func() {
		defer func() {
			pubsub.Close()
			close(out)
		}()

		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				continue
			}

			var snapshot map[string]string
			if err := json.Unmarshal([]byte(msg.Payload), &snapshot); err != nil {
				continue
			}
			if snapshot == nil {
				snapshot = map[string]string{}
			}

			select {
			case out <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
