package errhdl

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coderi421/adkit/web"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareBuilder_Build(t *testing.T) {
	builder := NewMiddlewareBuilder().
		AddCode(http.StatusNotFound, []byte(`<p class="dfp-error">Error: page not found</p>`)).
		AddCode(http.StatusInternalServerError, []byte(`<p class="dfp-error">Error: internal error</p>`))
	server := web.NewHTTPServer()
	server.Use(builder.Build())
	server.Get("/fail", func(ctx *web.Context) {
		ctx.RespString(http.StatusInternalServerError, "stack trace")
	})
	server.Get("/ok", func(ctx *web.Context) {
		ctx.RespString(http.StatusOK, "fine")
	})

	testCases := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{
			name:     "not found",
			path:     "/missing",
			wantCode: http.StatusNotFound,
			wantBody: `<p class="dfp-error">Error: page not found</p>`,
		},
		{
			name:     "server error",
			path:     "/fail",
			wantCode: http.StatusInternalServerError,
			wantBody: `<p class="dfp-error">Error: internal error</p>`,
		},
		{
			name:     "untouched",
			path:     "/ok",
			wantCode: http.StatusOK,
			wantBody: "fine",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.wantCode, recorder.Code)
			assert.Equal(t, tc.wantBody, recorder.Body.String())
		})
	}
}
