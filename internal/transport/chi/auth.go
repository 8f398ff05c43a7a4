package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicPaths bypass authentication so health checks and scrapers need no key.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// authSchemes are the accepted Authorization schemes. ApiKey mirrors the
// header Elasticsearch clients already send.
var authSchemes = []string{"Bearer", "ApiKey"}

// BearerAuthMiddleware guards the API with static keys passed as
// "Authorization: Bearer <key>" or "Authorization: ApiKey <key>".
// With no non-empty keys the middleware is a pass-through.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing authorization header")
				return
			}
			token, ok := credentials(header)
			if !ok {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized,
					"authorization header must use Bearer or ApiKey scheme")
				return
			}
			if !knownKey(keys, token) {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// credentials splits "<scheme> <token>". Scheme matching is case-insensitive.
func credentials(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found {
		return "", false
	}
	for _, s := range authSchemes {
		if strings.EqualFold(scheme, s) {
			return strings.TrimSpace(token), true
		}
	}
	return "", false
}

func knownKey(keys [][]byte, token string) bool {
	if token == "" {
		return false
	}
	t := []byte(token)
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare(k, t)
	}
	return match == 1
}
