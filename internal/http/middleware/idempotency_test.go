package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
)

// idemRouter wires RequestID plus the validator under test in front of a
// prediction-shaped route, returning the recorder after serving one POST.
func idemRouter(t *testing.T, opts IdempotencyOptions, key string, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(IdempotencyValidator(opts))
	r.POST("/cases/:id/predictions", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cases/exp-42/predictions", nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestGetIdempotencyKey_ToleratesWrongTypes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("unset key: got %q ok=%v", k, ok)
	}
	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("int-typed key reported as present")
	}
	c.Set(ctxKeyIdemKey, "k-1")
	if k, ok := GetIdempotencyKey(c); !ok || k != "k-1" {
		t.Fatalf("stashed key: got %q ok=%v", k, ok)
	}
}

func TestIdempotencyValidator_NoHeaderPassesThrough(t *testing.T) {
	w := idemRouter(t, IdempotencyOptions{}, "", func(c *gin.Context) {
		if _, ok := GetIdempotencyKey(c); ok {
			t.Fatalf("key stashed despite missing header")
		}
		c.Status(http.StatusNoContent)
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
}

func TestIdempotencyValidator_RejectsMalformedKeys(t *testing.T) {
	cases := []struct {
		name string
		opts IdempotencyOptions
		key  string
	}{
		{"over max length", IdempotencyOptions{MaxLen: 8}, "clave-demasiado-larga"},
		{"default pattern", IdempotencyOptions{}, "clave con espacios"},
		{"custom pattern", IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, "abc123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := idemRouter(t, tc.opts, tc.key, func(c *gin.Context) {
				t.Fatalf("handler ran for malformed key %q", tc.key)
			})
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if body["code"] != "bad_idempotency_key" {
				t.Fatalf("envelope = %v", body)
			}
			if rid, _ := body["request_id"].(string); rid == "" {
				t.Fatalf("envelope missing request_id: %v", body)
			}
		})
	}
}

func TestIdempotencyValidator_ValidKeyIsStashed(t *testing.T) {
	w := idemRouter(t, IdempotencyOptions{}, "pred:2026-001", func(c *gin.Context) {
		key, ok := GetIdempotencyKey(c)
		if !ok || key != "pred:2026-001" {
			t.Fatalf("stashed key = %q ok=%v", key, ok)
		}
		c.Status(http.StatusOK)
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
