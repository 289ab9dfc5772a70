package log

import (
	"net/http"
	"time"
)

// statusRecorder captures the status and body size a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// LogHTTPRequest writes one access-log line for a finished request. Server
// errors are logged at error level, everything else at info.
func LogHTTPRequest(method, path string, status int, duration time.Duration, size int, remoteAddr, userAgent string) {
	fields := []interface{}{
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
		"size", size,
		"remote_addr", remoteAddr,
		"user_agent", userAgent,
	}
	if status >= http.StatusInternalServerError {
		Errorw("http request", fields...)
		return
	}
	Infow("http request", fields...)
}

// HTTPMiddleware logs every request that passes through next.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, req)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		LogHTTPRequest(req.Method, req.URL.Path, rec.status, time.Since(start), rec.size, req.RemoteAddr, req.UserAgent())
	})
}
