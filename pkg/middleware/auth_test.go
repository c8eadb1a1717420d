package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func authTestRouter(keys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(APIKeyAuthMiddleware(keys))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func get(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAPIKeyAuth_DisabledWithoutKeys(t *testing.T) {
	router := authTestRouter(nil)

	if resp := get(router, ""); resp.Code != http.StatusOK {
		t.Fatalf("expected open access, got %d", resp.Code)
	}
}

func TestAPIKeyAuth_MissingHeader(t *testing.T) {
	router := authTestRouter([]string{"k1"})

	if resp := get(router, ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if resp := get(router, "Basic abc"); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-bearer scheme, got %d", resp.Code)
	}
}

func TestAPIKeyAuth_WrongKey(t *testing.T) {
	router := authTestRouter([]string{"k1", "k2"})

	if resp := get(router, "Bearer nope"); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	router := authTestRouter([]string{"k1", "k2"})

	if resp := get(router, "Bearer k2"); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAPIKeyAuth_BlankKeysAreIgnored(t *testing.T) {
	router := authTestRouter([]string{"  ", ""})

	if resp := get(router, ""); resp.Code != http.StatusOK {
		t.Fatalf("expected open access with only blank keys, got %d", resp.Code)
	}
}
