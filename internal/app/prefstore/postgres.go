package prefstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"freequilt/internal/app/db"
	"freequilt/internal/pkg/logx"
	"freequilt/internal/pkg/randx"
)

// NotifyChannel is the PostgreSQL LISTEN/NOTIFY channel carrying change events.
const NotifyChannel = "prefstore_changes"

const maxTxRetries = 5

// notification is the NOTIFY payload. Values are not included because
// payloads are limited to 8000 bytes; listeners read the row instead.
type notification struct {
	Instance  string `json:"i"`
	Namespace string `json:"n"`
	Key       string `json:"k"`
	Origin    string `json:"o,omitempty"`
	Deleted   bool   `json:"d,omitempty"`
}

// PostgresStore keeps preferences in the preferences table.
type PostgresStore struct {
	pool     *pgxpool.Pool
	feed     *Feed
	instance string
	logger   zerolog.Logger
}

// NewPostgresStore wraps an already migrated pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	instance := randx.MessageID()
	return &PostgresStore{
		pool:     pool,
		feed:     NewFeed(),
		instance: instance,
		logger:   logx.Component("prefstore.postgres").With().Str("instance", instance).Logger(),
	}
}

// Get implements Store.
func (p *PostgresStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var value string
	err := p.pool.QueryRow(ctx,
		`SELECT value::text FROM preferences WHERE namespace = $1 AND key = $2`,
		namespace, key,
	).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", namespace, key, err)
	}
	return []byte(value), nil
}

// Set implements Store.
func (p *PostgresStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	if value == nil {
		value = []byte("null")
	}

	var pending *Change
	err := p.inTx(ctx, func(tx pgx.Tx) error {
		pending = nil
		if err := upsert(ctx, tx, namespace, key, value); err != nil {
			return err
		}
		change, err := p.notify(ctx, tx, namespace, key, value)
		pending = change
		return err
	})
	return p.publish(pending, err)
}

// Delete implements Store.
func (p *PostgresStore) Delete(ctx context.Context, namespace, key string) error {
	var pending *Change
	err := p.inTx(ctx, func(tx pgx.Tx) error {
		pending = nil
		tag, err := tx.Exec(ctx, `DELETE FROM preferences WHERE namespace = $1 AND key = $2`, namespace, key)
		if err != nil {
			return fmt.Errorf("delete %s/%s: %w", namespace, key, err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		change, err := p.notify(ctx, tx, namespace, key, nil)
		pending = change
		return err
	})
	return p.publish(pending, err)
}

// Update implements Store. The key is serialized with a transaction-scoped
// advisory lock, which also covers keys that have no row yet.
func (p *PostgresStore) Update(ctx context.Context, namespace, key string, fn UpdateFunc) error {
	var pending *Change
	err := p.inTx(ctx, func(tx pgx.Tx) error {
		pending = nil
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, namespace+"\x00"+key); err != nil {
			return fmt.Errorf("lock %s/%s: %w", namespace, key, err)
		}

		var current []byte
		var raw string
		err := tx.QueryRow(ctx,
			`SELECT value::text FROM preferences WHERE namespace = $1 AND key = $2 FOR UPDATE`,
			namespace, key,
		).Scan(&raw)

		exists := true
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			exists = false
		case err != nil:
			return fmt.Errorf("read %s/%s: %w", namespace, key, err)
		default:
			current = []byte(raw)
		}

		next, write, err := applyUpdate(fn, current, exists)
		if err != nil || !write {
			return err
		}

		if next == nil {
			if _, err := tx.Exec(ctx, `DELETE FROM preferences WHERE namespace = $1 AND key = $2`, namespace, key); err != nil {
				return fmt.Errorf("delete %s/%s: %w", namespace, key, err)
			}
		} else if err := upsert(ctx, tx, namespace, key, next); err != nil {
			return err
		}

		change, err := p.notify(ctx, tx, namespace, key, next)
		pending = change
		return err
	})
	return p.publish(pending, err)
}

// Feed implements Store.
func (p *PostgresStore) Feed() *Feed {
	return p.feed
}

// Close implements Store.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

// Watch implements Watcher. It listens on NotifyChannel and republishes
// changes made by other instances.
func (p *PostgresStore) Watch(ctx context.Context) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}

	p.logger.Info().Str("channel", NotifyChannel).Msg("Preference watcher started")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}

		var msg notification
		if err := json.Unmarshal([]byte(n.Payload), &msg); err != nil {
			p.logger.Warn().Err(err).Str("payload", n.Payload).Msg("Ignoring malformed preference notification")
			continue
		}

		if msg.Instance == p.instance {
			continue
		}

		change := Change{Namespace: msg.Namespace, Key: msg.Key, Origin: msg.Origin}
		if !msg.Deleted {
			value, err := p.Get(ctx, msg.Namespace, msg.Key)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				p.logger.Warn().Err(err).Str("namespace", msg.Namespace).Str("key", msg.Key).Msg("Failed to read changed preference")
				continue
			}
			change.Value = value
		}

		p.feed.Publish(change)
	}
}

// inTx runs fn in a transaction, retrying serialization failures.
func (p *PostgresStore) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = pgx.BeginFunc(ctx, p.pool, fn)
		if !db.IsSerializationFailure(err) {
			return err
		}
		p.logger.Debug().Int("attempt", attempt+1).Msg("Retrying preference transaction")
	}
	return fmt.Errorf("%w: %w", ErrConflict, err)
}

// notify queues the NOTIFY inside tx. PostgreSQL delivers it on commit.
func (p *PostgresStore) notify(ctx context.Context, tx pgx.Tx, namespace, key string, value []byte) (*Change, error) {
	origin := OriginFrom(ctx)

	payload, err := json.Marshal(notification{
		Instance:  p.instance,
		Namespace: namespace,
		Key:       key,
		Origin:    origin,
		Deleted:   value == nil,
	})
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, string(payload)); err != nil {
		return nil, fmt.Errorf("notify %s/%s: %w", namespace, key, err)
	}

	return &Change{Namespace: namespace, Key: key, Value: value, Origin: origin}, nil
}

// publish serves local subscribers once the transaction committed. The
// watcher skips notifications of its own instance.
func (p *PostgresStore) publish(change *Change, err error) error {
	if err != nil {
		return err
	}
	if change != nil {
		p.feed.Publish(*change)
	}
	return nil
}

func upsert(ctx context.Context, tx pgx.Tx, namespace, key string, value []byte) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO preferences (namespace, key, value, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		namespace, key, string(value),
	)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", namespace, key, err)
	}
	return nil
}
