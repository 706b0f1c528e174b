package integrator

//go:generate mockgen -source=adapter.go -destination=mocks/adapter.go -package=mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vfg2006/adsync-api/internal/domain"
)

// Adapter é o contrato único que cada plataforma de anúncios implementa.
// A paginação é sempre consumida por inteiro dentro do adaptador.
type Adapter interface {
	Platform() domain.Platform
	AuthorizationURL(state, redirectURI string) (string, error)
	ExchangeAuthorizationCode(ctx context.Context, code, redirectURI string) (*domain.Credentials, error)
	ListAdAccounts(ctx context.Context, accessToken string) ([]domain.NormalizedAccount, error)
	ListCampaigns(ctx context.Context, accessToken, externalAccountID string) ([]domain.NormalizedCampaign, error)
	ListInsights(ctx context.Context, accessToken string, query domain.InsightQuery) ([]domain.NormalizedInsight, error)
}

// TokenRefresher é implementado pelas plataformas que renovam credenciais sem o usuário
type TokenRefresher interface {
	RefreshCredentials(ctx context.Context, refreshToken string) (*domain.Credentials, error)
}

type Registry struct {
	mu       sync.RWMutex
	adapters map[domain.Platform]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[domain.Platform]Adapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Platform()] = a
}

// Get devolve ValidationError para plataformas sem adaptador registrado
func (r *Registry) Get(p domain.Platform) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[p]
	if !ok {
		return nil, &domain.ValidationError{Field: "platform", Reason: fmt.Sprintf("no adapter registered for %s", p)}
	}
	return a, nil
}

func (r *Registry) Platforms() []domain.Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Platform, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Refresher devolve o adaptador como TokenRefresher quando a plataforma suporta renovação
func Refresher(a Adapter) (TokenRefresher, bool) {
	tr, ok := a.(TokenRefresher)
	return tr, ok
}
