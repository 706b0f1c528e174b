package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		value string
		want  time.Duration
	}{
		{value: "", want: 0},
		{value: "30", want: 30 * time.Second},
		{value: " 5 ", want: 5 * time.Second},
		{value: "-1", want: 0},
		{value: "abc", want: 0},
		{value: now.Add(90 * time.Second).Format(http.TimeFormat), want: 90 * time.Second},
		{value: now.Add(-time.Minute).Format(http.TimeFormat), want: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseRetryAfter(tt.value, now), tt.value)
	}
}

func TestDo_CapsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "1")
		_, _ = w.Write([]byte(strings.Repeat("a", MaxResponseBytes+100)))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := Do(context.Background(), srv.Client(), NewLimiter(100, 1), req)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Len(t, resp.Body, MaxResponseBytes)
	assert.Equal(t, "1", resp.Header.Get("X-Test"))
}

func TestDo_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Do(ctx, srv.Client(), nil, req)
	assert.Error(t, err)
}

func TestLookbackRange(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

	start, end := LookbackRange(now, 7)
	assert.Equal(t, "2024-03-03", FormatDate(start))
	assert.Equal(t, "2024-03-09", FormatDate(end))

	start, end = LookbackRange(now, 0)
	assert.Equal(t, "2024-03-09", FormatDate(start))
	assert.Equal(t, "2024-03-09", FormatDate(end))
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	require.NoError(t, err)
	b, err := GenerateState()
	require.NoError(t, err)

	assert.Len(t, a, stateLength)
	assert.NotEqual(t, a, b)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))

	// cada sílaba coreana ocupa 3 bytes
	korean := "잘못된 요청입니다"
	for max := 1; max < len(korean); max++ {
		got := Truncate(korean, max)
		assert.True(t, utf8.ValidString(got), "max=%d: %q", max, got)
		assert.LessOrEqual(t, len(got), max+len("..."))
	}
	assert.Equal(t, "잘...", Truncate(korean, 4))
	assert.Equal(t, "...", Truncate(korean, 2))
}
