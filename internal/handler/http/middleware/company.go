package middleware

import (
	"net/http"

	"github.com/csm-garage/backoffice-go/internal/handler/http/response"
	"github.com/csm-garage/backoffice-go/internal/pkg/jwt"
)

// RequireCompany rejects tokens that are not scoped to a company.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := jwt.CompanyIDFromContext(r.Context()); err != nil {
			response.Forbidden(w, "Company access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
