package middleware

import (
	"net/http"
	"strings"

	pkgauth "github.com/zulal-hq/identity-backend/pkg/auth"
	"github.com/zulal-hq/identity-backend/pkg/config"
)

// Gate enforces the page-level access boundary. API paths are exempt (they
// carry their own Auth middleware); the root path is open to both states;
// any other page requires a parsable session token or gets redirected to the
// sign-in page, while a signed-in visit to the sign-in page bounces home.
func Gate(jwtCfg config.JWTConfig, gateCfg config.GateConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if strings.HasPrefix(path, "/api") ||
				strings.HasPrefix(path, "/health") ||
				path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			authenticated := false
			if token := BearerToken(r); token != "" {
				if _, err := pkgauth.ParseSessionToken(jwtCfg, token); err == nil {
					authenticated = true
				}
			}

			switch {
			case path == gateCfg.SignInPath:
				if authenticated {
					http.Redirect(w, r, gateCfg.HomePath, http.StatusFound)
					return
				}
			case path == gateCfg.HomePath:
				// Root stays reachable for both states.
			default:
				if !authenticated {
					http.Redirect(w, r, gateCfg.SignInPath, http.StatusFound)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
