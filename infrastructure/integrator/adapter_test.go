package integrator_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/infrastructure/integrator"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/mocks"
	"github.com/vfg2006/adsync-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func TestRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)

	meta := mocks.NewMockAdapter(ctrl)
	meta.EXPECT().Platform().Return(domain.PlatformMeta).AnyTimes()
	naver := mocks.NewMockAdapter(ctrl)
	naver.EXPECT().Platform().Return(domain.PlatformNaver).AnyTimes()

	r := integrator.NewRegistry(naver, meta)

	got, err := r.Get(domain.PlatformMeta)
	require.NoError(t, err)
	assert.Same(t, meta, got)

	_, err = r.Get(domain.PlatformTikTok)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, []domain.Platform{domain.PlatformMeta, domain.PlatformNaver}, r.Platforms())
}

type refreshingAdapter struct {
	*mocks.MockAdapter
	*mocks.MockTokenRefresher
}

func TestRefresher(t *testing.T) {
	ctrl := gomock.NewController(t)

	plain := mocks.NewMockAdapter(ctrl)
	_, ok := integrator.Refresher(plain)
	assert.False(t, ok)

	withRefresh := refreshingAdapter{mocks.NewMockAdapter(ctrl), mocks.NewMockTokenRefresher(ctrl)}
	_, ok = integrator.Refresher(withRefresh)
	assert.True(t, ok)
}

func TestParseDay(t *testing.T) {
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	for _, v := range []string{"2024-01-02", "2024-01-02 00:00:00", "20240102", "2024-01-02T10:00:00Z"} {
		got, err := integrator.ParseDay(v)
		require.NoError(t, err, v)
		assert.Equal(t, want, got, v)
	}

	_, err := integrator.ParseDay("02/01/2024")
	assert.Error(t, err)
}

func TestParseCount(t *testing.T) {
	n, err := integrator.ParseCount("clicks", "")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = integrator.ParseCount("clicks", "12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	n, err = integrator.ParseCount("clicks", "12.0")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	_, err = integrator.ParseCount("clicks", "12.5")
	assert.Error(t, err)

	_, err = integrator.ParseCount("clicks", "-1")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	d, err := integrator.ParseAmount("spend", "10.25")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10.25").Equal(d))

	d, err = integrator.ParseAmount("spend", "")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = integrator.ParseAmount("spend", "R$10")
	assert.Error(t, err)
}
