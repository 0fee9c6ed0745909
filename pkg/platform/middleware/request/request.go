// Package request assigns every HTTP request an id that is echoed back to
// the caller and attached to log lines.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"ncmr/pkg/requestcontext"
)

const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 128

// RequestID reuses a caller-supplied id when it is reasonable, otherwise
// generates one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
