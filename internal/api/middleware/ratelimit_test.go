package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/projectwatch/dashboard-api/internal/api/handler"
)

func TestRateLimit_PerUser(t *testing.T) {
	e := echo.New()
	mw := RateLimit(1) // burst of 3
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	call := func(user string) error {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set(handler.CtxUserID, user)
		return h(c)
	}

	for i := 0; i < 3; i++ {
		if err := call("u1"); err != nil {
			t.Fatalf("request %d rejected: %v", i, err)
		}
	}
	err := call("u1")
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if err := call("u2"); err != nil {
		t.Fatalf("other users have their own budget: %v", err)
	}
}
