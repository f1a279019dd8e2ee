package middleware

import (
	"net/http"

	"product-catalog/internal/apierror"
	"product-catalog/internal/metrics"

	"go.uber.org/zap"
)

// ErrorHandlingMiddleware catches panics, counts them against the error
// metric and converts them to 500 responses. When redacted is true the
// response message carries no failure detail.
func ErrorHandlingMiddleware(logger *zap.Logger, sink metrics.Sink, redacted bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)
					sink.IncError()

					message := "internal error"
					if !redacted {
						if e, ok := err.(error); ok {
							message = e.Error()
						}
					}
					apierror.Write(w, apierror.CodeInternal, message)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
