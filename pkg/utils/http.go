package utils

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// MaxResponseBytes limita o corpo lido das plataformas
const MaxResponseBytes = 1 << 20

// Response guarda o que sobra de uma chamada depois que o corpo foi consumido
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Doer é satisfeito por *http.Client
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient devolve um cliente com timeout explícito
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// NewLimiter cria um limitador por plataforma a partir de rps e burst da config
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Do espera o limitador, executa a requisição e lê o corpo até MaxResponseBytes
func Do(ctx context.Context, client Doer, limiter *rate.Limiter, req *http.Request) (*Response, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limiter")
		}
	}

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// ParseRetryAfter interpreta o header Retry-After em segundos ou data HTTP.
// Devolve zero quando ausente ou inválido.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}

	return 0
}

// Truncate encurta mensagens remotas antes de irem para erros e logs.
// max é em bytes; o corte recua até o início de um caractere para não quebrar UTF-8.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
