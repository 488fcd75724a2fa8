package httpserver

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestWebSocketConsole(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/websocket/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "example.com")
	assert.Contains(t, rec.Body.String(), "/websocket/admin")
}

func TestOptionalHandlersAreMounted(t *testing.T) {
	reached := map[string]bool{}
	mark := func(name string) echo.HandlerFunc {
		return func(c echo.Context) error {
			reached[name] = true
			return c.NoContent(http.StatusNoContent)
		}
	}
	mount := func(name string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			reached[name] = true
			w.WriteHeader(http.StatusNoContent)
		})
	}

	ts := newTestServer(t, withHandlers(Handlers{
		GraphQL:              mark("graphql"),
		SOAP:                 mark("soap"),
		BookUpdatesWebSocket: mount("book-updates"),
		AdminWebSocket:       mount("admin"),
		Metrics:              mount("metrics"),
	}))

	ts.do(t, http.MethodPost, "/graphql", `{}`)
	ts.do(t, http.MethodPost, "/soap", "")
	ts.do(t, http.MethodGet, "/websocket/book-updates", "")
	ts.do(t, http.MethodGet, "/websocket/admin", "")
	ts.do(t, http.MethodGet, "/metrics", "")

	assert.Equal(t, map[string]bool{
		"graphql": true, "soap": true, "book-updates": true, "admin": true, "metrics": true,
	}, reached)
}

func TestUnmountedHandlersAreNotFound(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/graphql", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/metrics", "").Code)
}
