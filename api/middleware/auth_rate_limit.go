package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mart-ng/mart-backend/api/responses"
	pkgerrors "github.com/mart-ng/mart-backend/pkg/errors"
	"github.com/mart-ng/mart-backend/pkg/logger"
)

type counterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// AuthRateLimitPolicy is a fixed-window throttle for one auth surface,
// counted per client IP and per submitted email address.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{
		name:       name,
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// check is one counter dimension resolved from an incoming request.
type check struct {
	scope   string
	subject string
	key     string
	limit   int
}

// checks resolves the counter dimensions for a request. The body is read
// here so the email can be extracted; the replacement reader hands the same
// bytes to the downstream handler.
func (p AuthRateLimitPolicy) checks(r *http.Request) ([]check, error) {
	var out []check

	if p.ipLimit > 0 {
		if ip := clientIP(r); ip != "" {
			out = append(out, check{
				scope:   "ip",
				subject: ip,
				key:     fmt.Sprintf("rl:ip:%s:%s", p.name, ip),
				limit:   p.ipLimit,
			})
		}
	}

	if p.emailLimit > 0 {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if email := emailFromBody(body); email != "" {
			hash := sha256.Sum256([]byte(email))
			subject := hex.EncodeToString(hash[:])
			out = append(out, check{
				scope:   "email",
				subject: subject,
				key:     fmt.Sprintf("rl:email:%s:%s", p.name, subject),
				limit:   p.emailLimit,
			})
		}
	}

	return out, nil
}

// AuthRateLimit throttles login and registration traffic. Counters live in
// redis with the policy window as TTL; a nil store or a zero-valued policy
// disables the middleware entirely.
func AuthRateLimit(policy AuthRateLimitPolicy, store counterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			dims, err := policy.checks(r)
			if err != nil {
				responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}

			for _, c := range dims {
				count, err := store.IncrWithTTL(ctx, c.key, policy.window)
				if err != nil {
					responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(c.limit) {
					blockRequest(ctx, logg, w, policy, c, count)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func blockRequest(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, c check, count int64) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"scope":          c.scope,
			"subject":        c.subject,
			"policy":         policy.name,
			"attempts":       count,
			"limit":          c.limit,
			"window_seconds": int(policy.window.Seconds()),
		})
		logg.Warn(logCtx, "auth.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

// clientIP prefers proxy headers over the socket address so limits follow
// the real client behind a load balancer.
func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func emailFromBody(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}
