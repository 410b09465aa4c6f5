package middleware

import (
	"mime"
	"net/http"

	"github.com/nyudevops/shopcarts/api/responses"
	pkgerrors "github.com/nyudevops/shopcarts/pkg/errors"
	"github.com/nyudevops/shopcarts/pkg/logger"
)

const jsonMediaType = "application/json"

// RequireJSON rejects requests whose Content-Type is not application/json
// with 415. Media type parameters such as charset are accepted.
func RequireJSON(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnsupportedMediaType, "Content-Type must be application/json"))
				return
			}
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || mediaType != jsonMediaType {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnsupportedMediaType, "Content-Type must be application/json").
					WithDetails(map[string]any{"content_type": contentType}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
