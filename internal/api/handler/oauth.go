package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/usecases/connecting"
	"github.com/vfg2006/adsync-api/pkg/log"
)

// Motivos devolvidos ao front no parâmetro error do redirect
const (
	reasonAccessDenied      = "access_denied"
	reasonInvalidState      = "invalid_state"
	reasonExchangeFailed    = "exchange_failed"
	reasonReconnectRequired = "reconnect_required"
	reasonRateLimited       = "rate_limited"
	reasonConnectFailed     = "connect_failed"
)

func AuthorizeOAuth(service connecting.ConnectingService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := claims(w, r)
		if !ok {
			return
		}

		platform, err := platformParam(r)
		if err != nil {
			fail(w, r, err)
			return
		}

		start, err := service.InitiateOAuth(r.Context(), c.OrganizationID, platform, r.URL.Query().Get("return_to"))
		if err != nil {
			fail(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, start)
	})
}

// OAuthCallback nunca responde JSON: o navegador sempre volta para o front com status ou motivo do erro.
// O destino gravado no state é conferido de novo contra a lista de hosts permitidos.
func OAuthCallback(service connecting.ConnectingService, cfg config.OAuth) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()
		logger := log.ForContext(ctx).WithField("path", r.URL.Path)

		state, err := service.ResolveState(ctx, q.Get("state"))
		if err != nil {
			logger.WithError(err).Warn("connect: oauth callback with invalid state")
			redirectWith(w, r, cfg.DefaultReturnTo, url.Values{"error": {reasonInvalidState}})
			return
		}

		returnTo := state.ReturnContext
		if !cfg.ReturnToAllowed(returnTo) {
			logger.WithField("return_to", returnTo).Warn("connect: oauth state with disallowed return target")
			returnTo = cfg.DefaultReturnTo
		}

		platform, err := platformParam(r)
		if err != nil || platform != state.Platform {
			logger.Warn("connect: oauth callback platform does not match state")
			redirectWith(w, r, returnTo, url.Values{"error": {reasonInvalidState}})
			return
		}

		if denied := q.Get("error"); denied != "" || q.Get("code") == "" {
			logger.WithField("platform_error", denied).Info("connect: oauth consent not granted")
			redirectWith(w, r, returnTo, url.Values{"error": {reasonAccessDenied}})
			return
		}

		creds, err := service.CompleteOAuth(ctx, platform, q.Get("code"), state.RedirectURI)
		if err != nil {
			logger.WithError(err).Warn("connect: oauth exchange failed")
			redirectWith(w, r, returnTo, url.Values{"error": {callbackReason(err)}})
			return
		}

		accounts, err := service.ConnectOAuth(ctx, state, creds)
		if err != nil {
			logger.WithError(err).Warn("connect: failed to connect oauth accounts")
			redirectWith(w, r, returnTo, url.Values{"error": {callbackReason(err)}})
			return
		}

		redirectWith(w, r, returnTo, url.Values{
			"status":   {"connected"},
			"platform": {platform.Lower()},
			"accounts": {strconv.Itoa(len(accounts))},
		})
	})
}

func callbackReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrOAuthExchange):
		return reasonExchangeFailed
	case errors.Is(err, domain.ErrCredentialInvalid):
		return reasonReconnectRequired
	case errors.Is(err, domain.ErrRateLimited):
		return reasonRateLimited
	}
	return reasonConnectFailed
}

// redirectWith acrescenta os parâmetros preservando a query já existente do destino
func redirectWith(w http.ResponseWriter, r *http.Request, target string, params url.Values) {
	u, err := url.Parse(target)
	if err != nil || target == "" {
		u = &url.URL{Path: "/"}
	}

	query := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			query.Set(k, v)
		}
	}
	u.RawQuery = query.Encode()

	http.Redirect(w, r, u.String(), http.StatusFound)
}
