package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
)

// Credentials is one basic-auth username/password pair
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) match(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	return userOK && passOK && c.Username != ""
}

// BasicAuth rejects requests that do not carry one of the accepted credentials
func BasicAuth(realm string, accepted ...Credentials) func(http.Handler) http.Handler {
	challenge := fmt.Sprintf("Basic realm=%q", realm)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if ok {
				for _, c := range accepted {
					if c.match(username, password) {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			w.Header().Set("WWW-Authenticate", challenge)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Login required"}}`))
		})
	}
}
