package audit

import (
	"bytes"
	"fmt"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stationdesk/stationdesk/internal/auth"
)

// fallbackSourceAddress is recorded when no transport origin is available
const fallbackSourceAddress = "0.0.0.0"

// Auditor attaches audit interception to routes. A mutating route gains
// auditing by naming its (action, target type) pair; no per-resource logging
// code is needed.
type Auditor struct {
	recorder *Recorder
}

// NewAuditor creates an auditor dispatching through the given recorder
func NewAuditor(recorder *Recorder) *Auditor {
	return &Auditor{recorder: recorder}
}

// Recorder exposes the underlying recorder for explicit, non-HTTP call sites
func (a *Auditor) Recorder() *Recorder {
	return a.recorder
}

type interceptConfig struct {
	resolver ResolverFunc
}

// Option customizes one intercepted route
type Option func(*interceptConfig)

// WithResolver overrides target resolution for routes where the handler
// knows the canonical id better than the generic precedence order.
func WithResolver(fn ResolverFunc) Option {
	return func(cfg *interceptConfig) {
		cfg.resolver = fn
	}
}

// Intercept observes the outcome of the wrapped handlers and records an
// audit event when the response status is in the success range and an
// authenticated actor is present. Anonymous mutations are skipped on
// purpose. The event is dispatched asynchronously and adds no latency to
// the response.
//
// The action and target type are validated here, at route registration,
// so an invalid vocabulary entry fails at startup rather than producing
// free-form rows at runtime.
func (a *Auditor) Intercept(action Action, targetType TargetType, opts ...Option) gin.HandlerFunc {
	if !action.Valid() {
		panic(fmt.Sprintf("audit: invalid action code %q", action))
	}
	if !targetType.Valid() {
		panic(fmt.Sprintf("audit: invalid target type %q", targetType))
	}

	cfg := interceptConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(c *gin.Context) {
		bw := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = bw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		actor, ok := auth.UserFromContext(c)
		if !ok {
			return
		}

		targetID := ResolveTarget(c, bw.body.Bytes(), cfg.resolver)
		a.recorder.Submit(actor.ID, action, targetType, targetID, sourceAddress(c))
	}
}

// bodyCaptureWriter tees the response body so the target resolver can
// inspect it after the handler chain completes.
type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// sourceAddress resolves the caller's network origin: first entry of the
// forwarded-address header, else the transport peer, else a fixed fallback.
func sourceAddress(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}

	if remote := c.Request.RemoteAddr; remote != "" {
		if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
			return host
		}
		return remote
	}

	return fallbackSourceAddress
}
