package cli

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/coderi421/adkit/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_BuildServer(t *testing.T) {
	f := newFakeService()
	remote := httptest.NewServer(f)
	defer remote.Close()

	cfg := config.Default()
	cfg.Service.Endpoint = remote.URL
	opts := &ServeOptions{RootOptions: &RootOptions{Config: cfg, Logger: zerolog.Nop()}}
	reg := prometheus.NewRegistry()
	srv, closeFn, err := opts.buildServer(reg)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, closeFn())
	}()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `<form method="post" action="/login">`)

	req = httptest.NewRequest(http.MethodPost, "/panels/labels", nil)
	resp = httptest.NewRecorder()
	srv.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	form := url.Values{"token": {cliToken}}
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp = httptest.NewRecorder()
	srv.ServeHTTP(resp, req)
	require.Equal(t, http.StatusSeeOther, resp.Code)
	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)

	req = httptest.NewRequest(http.MethodPost, "/panels/labels", nil)
	req.AddCookie(cookies[0])
	resp = httptest.NewRecorder()
	srv.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "<li>Sports (1)")

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "adkit_playground_http_response")
	assert.Contains(t, names, "adkit_soap_call_duration_ms")
}
