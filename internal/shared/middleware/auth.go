package middleware

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"networth/internal/shared/auth"
)

// Auth resolves the request principal from the access_token cookie or a
// bearer token. Requests without any token fall back to defaultUserID when it
// is set; otherwise they are rejected.
func Auth(jwt *auth.JWT, defaultUserID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extractToken(r)
			if err != nil {
				writeAuthError(w, err.Error())
				return
			}

			var principal auth.Principal
			switch {
			case token != "":
				principal, err = jwt.Validate(token)
				if err != nil {
					if !errors.Is(err, auth.ErrTokenExpired) {
						log.WithField("path", r.URL.Path).WithError(err).Debug("rejected token")
					}
					writeAuthError(w, "Invalid or expired token")
					return
				}
			case defaultUserID != "":
				principal = auth.Principal{UserID: defaultUserID}
			default:
				writeAuthError(w, "Authentication required")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

func extractToken(r *http.Request) (string, error) {
	if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return "", nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("Invalid authorization header format")
	}
	return parts[1], nil
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"kind":"unauthorized","message":"` + message + `"}}`))
}
