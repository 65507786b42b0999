package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis"

	applog "clinicreport/internal/log"
)

const keyPrefix = "session:"

type getter interface {
	Get(key string) *redis.StringCmd
}

// RedisProvider looks sessions up under "session:<token>", where the value
// is the JSON encoding of Session written by the sign-in service.
type RedisProvider struct {
	client *redis.Client
	get    func(ctx context.Context) getter
	now    func() time.Time
	logger *applog.Logger
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisProvider(opts RedisOptions, logger *applog.Logger) *RedisProvider {
	if logger == nil {
		logger = applog.Discard()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisProvider{
		client: client,
		get:    func(ctx context.Context) getter { return client.WithContext(ctx) },
		now:    time.Now,
		logger: logger.WithComponent(applog.ComponentSession),
	}
}

func (p *RedisProvider) Current(ctx context.Context) (Session, error) {
	token := TokenFrom(ctx)
	if token == "" {
		return Session{}, ErrNoSession
	}

	raw, err := p.get(ctx).Get(keyPrefix + token).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("session lookup: %w", err)
	}

	s, err := decode(raw)
	if err != nil {
		p.logger.WarnContext(ctx, "Discarding malformed session", applog.FieldError, err)
		return Session{}, ErrNoSession
	}
	if s.Expired(p.now()) {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// Ping checks connectivity for readiness probes.
func (p *RedisProvider) Ping(ctx context.Context) error {
	return p.client.WithContext(ctx).Ping().Err()
}

func (p *RedisProvider) Close() error {
	return p.client.Close()
}

func decode(raw string) (Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, err
	}
	if s.UserID == "" {
		return Session{}, errors.New("session without user id")
	}
	return s, nil
}
