package prefstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"freequilt/internal/pkg/logx"
	"freequilt/internal/pkg/randx"
)

const (
	// RedisKeyPrefix prefixes every key written by RedisStore.
	RedisKeyPrefix = "freequilt:pref:"

	// RedisChangesChannel is the pub/sub channel carrying change events.
	RedisChangesChannel = "freequilt:pref:changes"

	maxWatchRetries = 10
)

// redisEvent is published on RedisChangesChannel after each write.
type redisEvent struct {
	Instance  string          `json:"i"`
	Namespace string          `json:"n"`
	Key       string          `json:"k"`
	Origin    string          `json:"o,omitempty"`
	Value     json.RawMessage `json:"v,omitempty"`
}

// RedisStore keeps each preference in its own Redis string key.
type RedisStore struct {
	client   *redis.Client
	feed     *Feed
	instance string
	logger   zerolog.Logger
}

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	return NewRedisStoreFromClient(client), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	instance := randx.MessageID()
	return &RedisStore{
		client:   client,
		feed:     NewFeed(),
		instance: instance,
		logger:   logx.Component("prefstore.redis").With().Str("instance", instance).Logger(),
	}
}

func redisKey(namespace, key string) string {
	return RedisKeyPrefix + namespace + ":" + key
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, redisKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", namespace, key, err)
	}
	return value, nil
}

// Set implements Store.
func (r *RedisStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	if value == nil {
		value = []byte("null")
	}

	event, err := r.event(ctx, namespace, key, value)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKey(namespace, key), value, 0)
		pipe.Publish(ctx, RedisChangesChannel, event)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", namespace, key, err)
	}

	r.publishLocal(ctx, namespace, key, value)
	return nil
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, namespace, key string) error {
	return r.Update(ctx, namespace, key, func(_ []byte, exists bool) ([]byte, error) {
		if !exists {
			return nil, ErrNoChange
		}
		return nil, nil
	})
}

// Update implements Store using WATCH/MULTI/EXEC, retrying when another
// client modified the key in between.
func (r *RedisStore) Update(ctx context.Context, namespace, key string, fn UpdateFunc) error {
	rkey := redisKey(namespace, key)

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		var (
			next  []byte
			wrote bool
		)

		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.Get(ctx, rkey).Bytes()
			exists := true
			if errors.Is(err, redis.Nil) {
				exists = false
				current = nil
			} else if err != nil {
				return err
			}

			value, write, err := applyUpdate(fn, current, exists)
			if err != nil || !write {
				return err
			}

			event, err := r.event(ctx, namespace, key, value)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if value == nil {
					pipe.Del(ctx, rkey)
				} else {
					pipe.Set(ctx, rkey, value, 0)
				}
				pipe.Publish(ctx, RedisChangesChannel, event)
				return nil
			})
			if err == nil {
				next, wrote = value, true
			}
			return err
		}, rkey)

		if errors.Is(err, redis.TxFailedErr) {
			r.logger.Debug().Int("attempt", attempt+1).Str("key", rkey).Msg("Retrying preference update")
			continue
		}
		if err != nil {
			return fmt.Errorf("update %s/%s: %w", namespace, key, err)
		}

		if wrote {
			r.publishLocal(ctx, namespace, key, next)
		}
		return nil
	}

	return fmt.Errorf("update %s/%s: %w", namespace, key, ErrConflict)
}

// Feed implements Store.
func (r *RedisStore) Feed() *Feed {
	return r.feed
}

// Close implements Store.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Watch implements Watcher by subscribing to RedisChangesChannel.
func (r *RedisStore) Watch(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, RedisChangesChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", RedisChangesChannel, err)
	}

	r.logger.Info().Str("channel", RedisChangesChannel).Msg("Preference watcher started")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event redisEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Warn().Err(err).Msg("Ignoring malformed preference event")
				continue
			}
			if event.Instance == r.instance {
				continue
			}

			r.feed.Publish(Change{
				Namespace: event.Namespace,
				Key:       event.Key,
				Value:     event.Value,
				Origin:    event.Origin,
			})
		}
	}
}

func (r *RedisStore) event(ctx context.Context, namespace, key string, value []byte) ([]byte, error) {
	return json.Marshal(redisEvent{
		Instance:  r.instance,
		Namespace: namespace,
		Key:       key,
		Origin:    OriginFrom(ctx),
		Value:     value,
	})
}

func (r *RedisStore) publishLocal(ctx context.Context, namespace, key string, value []byte) {
	r.feed.Publish(Change{
		Namespace: namespace,
		Key:       key,
		Value:     value,
		Origin:    OriginFrom(ctx),
	})
}
