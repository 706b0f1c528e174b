// Package cache mantém respostas de plataformas em memória para evitar chamadas externas redundantes.
// Não há coerência entre processos: cada instância da API tem o seu próprio cache.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vfg2006/adsync-api/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Clock permite controlar o tempo nos testes
type Clock func() time.Time

type entry[V any] struct {
	value     V
	expiresAt time.Time
	storedAt  time.Time
}

// SyncCache é um cache com TTL e limite de entradas. Requisições concorrentes
// para a mesma chave compartilham uma única chamada ao fetch.
type SyncCache[V any] struct {
	mu         sync.Mutex
	entries    map[string]entry[V]
	maxEntries int
	now        Clock
	group      singleflight.Group
}

func New[V any](maxEntries int, clock Clock) *SyncCache[V] {
	if clock == nil {
		clock = time.Now
	}
	if maxEntries <= 0 {
		maxEntries = 1
	}

	return &SyncCache[V]{
		entries:    make(map[string]entry[V]),
		maxEntries: maxEntries,
		now:        clock,
	}
}

// GetOrFetch devolve o valor em cache ou chama fetch uma única vez por chave.
// Erros de fetch nunca são armazenados. ttl <= 0 desliga o armazenamento.
func (c *SyncCache[V]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// outra chamada pode ter preenchido a chave entre o get e o DoChan
		if v, ok := c.get(key); ok {
			return v, nil
		}

		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}

		if ttl > 0 {
			c.set(key, v, ttl)
		}

		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

func (c *SyncCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}

	return e.value, true
}

func (c *SyncCache[V]) set(key string, v V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked(now)
	}

	c.entries[key] = entry[V]{value: v, expiresAt: now.Add(ttl), storedAt: now}
}

// evictLocked descarta as entradas expiradas e, se ainda estiver cheio, a mais antiga
func (c *SyncCache[V]) evictLocked(now time.Time) {
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}

	if len(c.entries) < c.maxEntries {
		return
	}

	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.storedAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

// InvalidatePrefix remove todas as chaves com o prefixo informado
func (c *SyncCache[V]) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *SyncCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// InsightKey normaliza a chave de insights: conta|plataforma|campanha|início|fim.
// A conta conectada faz parte da chave para que organizações diferentes nunca compartilhem linhas.
func InsightKey(accountID string, platform domain.Platform, externalCampaignID string, r domain.DateRange) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		accountID,
		platform.Lower(),
		externalCampaignID,
		r.Start.Format(time.DateOnly),
		r.End.Format(time.DateOnly),
	)
}

// AccountPrefix casa todas as chaves de insights de uma conta conectada
func AccountPrefix(accountID string) string {
	return accountID + "|"
}
