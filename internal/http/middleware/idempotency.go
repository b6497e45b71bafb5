package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client-chosen dedup key for unsafe
// operations. The same key on a retried prediction request must yield the
// stored result instead of a second model run.
const HeaderIdempotencyKey = "Idempotency-Key"

// ctxKeyIdemKey stashes the validated key; read it through GetIdempotencyKey.
const ctxKeyIdemKey = "idem.key"

// defaultKeyPattern accepts RFC 7230 token characters plus the separators
// clients commonly embed in UUIDs and ULIDs.
var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

const defaultKeyMaxLen = 200

// GetIdempotencyKey returns the validated key for this request, if the client
// sent one.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IdempotencyOptions tunes header validation.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length; <= 0 means 200.
	MaxLen int
	// Pattern overrides the default token character set.
	Pattern *regexp.Regexp
}

// IdempotencyValidator validates the Idempotency-Key header when present and
// stashes it for the prediction handlers, which resolve replays themselves
// once the authenticated identity is known. Requests without the header pass
// through untouched; a malformed key is rejected with 400 before any handler
// runs.
func IdempotencyValidator(opts IdempotencyOptions) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultKeyMaxLen
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)
		c.Next()
	}
}
