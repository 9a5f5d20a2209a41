package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/yasiru/rail-booking/internal/config"
)

// cachedPayload is the envelope stored in Redis for a cached response.
type cachedPayload struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter tees the response body while the handler writes it, so a
// successful response can be stored after the handler returns.
type captureWriter struct {
	http.ResponseWriter
	buf    *bytes.Buffer
	status int
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// NewRedisCache caches successful read responses for the public browse
// endpoints (stations, routes, schedules).  Timetable queries dominate
// traffic and change only when an operator edits the catalog, so a short
// TTL keeps them cheap without a purge protocol.  Cache misses and Redis
// errors fall through to the handler.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if _, ok := cfg.Methods[method]; !ok {
				return next(c)
			}

			key := cacheKeyFrom(cfg.Prefix, c)

			if raw, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				if payload, derr := decodePayload(raw); derr == nil {
					if cfg.Debug {
						c.Response().Header().Set("X-Cache", "HIT")
					}
					return c.Blob(payload.Status, payload.ContentType, payload.Body)
				}
				// Corrupt entry, drop it and regenerate.
				rdb.Del(c.Request().Context(), key)
			}

			cw := &captureWriter{
				ResponseWriter: c.Response().Writer,
				buf:            &bytes.Buffer{},
				status:         http.StatusOK,
			}
			c.Response().Writer = cw

			if err := next(c); err != nil {
				return err
			}

			if cw.status >= 200 && cw.status < 300 && cw.buf.Len() > 0 &&
				(cfg.MaxBodyBytes <= 0 || cw.buf.Len() <= cfg.MaxBodyBytes) {
				payload := cachedPayload{
					Status:      cw.status,
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        cw.buf.Bytes(),
				}
				if raw, err := encodePayload(payload); err == nil {
					rdb.Set(c.Request().Context(), key, raw, cfg.TTL)
				}
			}
			if cfg.Debug {
				c.Response().Header().Set("X-Cache", "MISS")
			}
			return nil
		}
	}
}

// cacheKeyFrom builds a stable key from the method, path and sorted query
// string, hashed so arbitrary query values stay within key-length limits.
func cacheKeyFrom(prefix string, c echo.Context) string {
	q := c.Request().URL.Query()
	names := make([]string, 0, len(q))
	for name := range q {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(c.Request().Method)
	sb.WriteByte(' ')
	sb.WriteString(c.Request().URL.Path)
	for _, name := range names {
		vals := q[name]
		sort.Strings(vals)
		for _, v := range vals {
			sb.WriteByte('&')
			sb.WriteString(name)
			sb.WriteByte('=')
			sb.WriteString(v)
		}
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return prefix + ":" + hex.EncodeToString(sum[:])
}

func encodePayload(p cachedPayload) ([]byte, error) {
	return json.Marshal(p)
}

func decodePayload(raw []byte) (cachedPayload, error) {
	var p cachedPayload
	err := json.Unmarshal(raw, &p)
	return p, err
}
