package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	redisDocPrefix   = "liftlog:doc:"
	redisOwnerPrefix = "liftlog:owner:"
)

// Redis is a Backend keeping each document as one JSON value plus a per-owner
// set of document IDs.
type Redis struct {
	client *redis.Client
	now    func() time.Time
	newID  func() string
}

// Compile-time check: *Redis satisfies Backend.
var _ Backend = (*Redis)(nil)

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, now: time.Now, newID: newID}
}

// DialRedis connects to addr and pings it.
func DialRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewRedis(client), nil
}

func (r *Redis) List(ctx context.Context, owner string) ([]Document, error) {
	ids, err := r.client.SMembers(ctx, redisOwnerPrefix+owner).Result()
	if err != nil {
		return nil, fmt.Errorf("listing document ids: %w", err)
	}

	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		d, err := r.load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Redis) Create(ctx context.Context, owner, description string, public bool, files map[string]string) (*Document, error) {
	now := r.now().UTC()
	d := &Document{
		ID:          r.newID(),
		Owner:       owner,
		Description: description,
		Public:      public,
		Files:       copyFiles(files),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.store(ctx, d); err != nil {
		return nil, err
	}
	if err := r.client.SAdd(ctx, redisOwnerPrefix+owner, d.ID).Err(); err != nil {
		return nil, fmt.Errorf("indexing document: %w", err)
	}
	return d, nil
}

func (r *Redis) Get(ctx context.Context, owner, id string) (*Document, error) {
	d, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Owner != owner {
		return nil, ErrNotFound
	}
	return d, nil
}

func (r *Redis) Update(ctx context.Context, owner, id string, files map[string]string) (*Document, error) {
	d, err := r.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	for name, content := range files {
		d.Files[name] = content
	}
	d.UpdatedAt = r.now().UTC()
	if err := r.store(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) load(ctx context.Context, id string) (*Document, error) {
	val, err := r.client.Get(ctx, redisDocPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	var d Document
	if err := json.Unmarshal([]byte(val), &d); err != nil {
		return nil, fmt.Errorf("decoding document %s: %w", id, err)
	}
	if d.Files == nil {
		d.Files = map[string]string{}
	}
	return &d, nil
}

func (r *Redis) store(ctx context.Context, d *Document) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if err := r.client.Set(ctx, redisDocPrefix+d.ID, string(data), 0).Err(); err != nil {
		return fmt.Errorf("storing document: %w", err)
	}
	return nil
}
