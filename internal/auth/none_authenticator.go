package auth

import (
	"net/http"

	"github.com/google/uuid"
)

// NoneAuthenticator trusts the X-Person-Id header. Development only.
type NoneAuthenticator struct{}

func NewNoneAuthenticator() (*NoneAuthenticator, error) {
	return &NoneAuthenticator{}, nil
}

func (n *NoneAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		personID, err := uuid.Parse(r.Header.Get("X-Person-Id"))
		if err != nil {
			http.Error(w, "missing or malformed X-Person-Id header", http.StatusUnauthorized)
			return
		}

		ctx := NewActorContext(r.Context(), Actor{PersonID: personID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
