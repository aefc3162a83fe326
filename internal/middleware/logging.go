package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// loggedWriter records the status and body size written by the handler.
type loggedWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *loggedWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *loggedWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// RequestLogger logs one line per request. Server errors log at error
// level, client errors at warn, everything else at info.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := &loggedWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(lw, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", lw.status),
				slog.Int("bytes", lw.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote", RealIP(r)),
			}

			level := slog.LevelInfo
			if lw.status >= 500 {
				level = slog.LevelError
			} else if lw.status >= 400 {
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "request", attrs...)
		})
	}
}
