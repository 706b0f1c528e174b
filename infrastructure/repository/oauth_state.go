package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/vfg2006/adsync-api/internal/domain"
)

//go:generate mockgen -source=oauth_state.go -destination=mocks/oauth_state.go -package=mocks

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const oauthStatePrefix = "oauth:state:"

type OAuthStateStore interface {
	Save(ctx context.Context, state *domain.OAuthState, ttl time.Duration) error
	Consume(ctx context.Context, state string) (*domain.OAuthState, error)
}

// stateClient é o subconjunto de redis.Cmdable usado pelo store
type stateClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

type redisOAuthStateStore struct {
	client stateClient
}

func NewOAuthStateStore(client redis.Cmdable) OAuthStateStore {
	return &redisOAuthStateStore{client: client}
}

func (s *redisOAuthStateStore) Save(ctx context.Context, state *domain.OAuthState, ttl time.Duration) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode oauth state: %w", err)
	}

	if err := s.client.Set(ctx, oauthStatePrefix+state.State, payload, ttl).Err(); err != nil {
		return fmt.Errorf("save oauth state: %w", err)
	}

	return nil
}

// Consume lê e apaga o state numa única operação (GETDEL), então um callback repetido falha
func (s *redisOAuthStateStore) Consume(ctx context.Context, state string) (*domain.OAuthState, error) {
	raw, err := s.client.GetDel(ctx, oauthStatePrefix+state).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("oauth state: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("consume oauth state: %w", err)
	}

	var out domain.OAuthState
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode oauth state: %w", err)
	}

	return &out, nil
}
