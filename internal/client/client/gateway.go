package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dokanload/internal/client/credentials"
	"github.com/dmitrijs2005/dokanload/internal/logging"
	"github.com/google/uuid"
)

const RequestIDHeaderName = "X-Request-ID"

// Invalidator is told when a call made with the stored token came back 401.
// token is the credential that call carried.
type Invalidator interface {
	HandleUnauthorized(ctx context.Context, token string)
}

// Request is one outbound call. Transfer selects the long timeout; Anonymous
// calls never carry the stored token.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        io.Reader
	ContentType string
	Transfer    bool
	Anonymous   bool
}

type GatewayConfig struct {
	BaseURL         string
	MetadataTimeout time.Duration
	TransferTimeout time.Duration
	HTTPClient      *http.Client
}

// Gateway is the single point every call to the Remote API goes through.
type Gateway struct {
	baseURL         string
	metadataTimeout time.Duration
	transferTimeout time.Duration
	http            *http.Client
	creds           credentials.Reader
	log             logging.Logger

	mu          sync.RWMutex
	invalidator Invalidator
}

func NewGateway(cfg GatewayConfig, creds credentials.Reader, log logging.Logger) *Gateway {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Gateway{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		metadataTimeout: cfg.MetadataTimeout,
		transferTimeout: cfg.TransferTimeout,
		http:            hc,
		creds:           creds,
		log:             log.With("component", "gateway"),
	}
}

// SetInvalidator registers who handles forced logouts.
func (g *Gateway) SetInvalidator(inv Invalidator) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.invalidator = inv
}

type bearerKey struct{}

// WithBearer makes calls under ctx carry token instead of the stored one.
// A 401 on such a call is returned to the caller but invalidates nothing.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

func (g *Gateway) bearer(ctx context.Context, r Request) (token string, stored bool, err error) {
	if t, ok := ctx.Value(bearerKey{}).(string); ok {
		return t, false, nil
	}
	if r.Anonymous {
		return "", false, nil
	}
	t, err := g.creds.Token(ctx)
	if err != nil {
		return "", false, err
	}
	return t, t != "", nil
}

func (g *Gateway) url(path string, query url.Values) string {
	u := g.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (g *Gateway) timeout(r Request) time.Duration {
	if r.Transfer {
		return g.transferTimeout
	}
	return g.metadataTimeout
}

// Do performs r and hands a 2xx response to handle, which must finish
// reading the body before returning. Non-2xx responses become typed errors;
// a 401 on a call that carried the stored token is reported to the
// Invalidator before the error is returned. Timeouts and transport failures
// wrap ErrNetwork and are never retried.
func (g *Gateway) Do(ctx context.Context, r Request, handle func(resp *http.Response) error) error {
	token, stored, err := g.bearer(ctx, r)
	if err != nil {
		closeBody(r.Body)
		return fmt.Errorf("read credentials: %w", err)
	}

	callCtx := ctx
	if d := g.timeout(r); d > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(callCtx, r.Method, g.url(r.Path, r.Query), r.Body)
	if err != nil {
		closeBody(r.Body)
		return fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeaderName, requestID)
	req.Header.Set("Accept", "application/json")
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := g.http.Do(req)
	if err != nil {
		g.log.Debug(ctx, "api call failed", "method", r.Method, "path", r.Path, "request_id", requestID, "error", err)
		return g.transportError(ctx, err)
	}
	defer resp.Body.Close()

	g.log.Debug(ctx, "api call", "method", r.Method, "path", r.Path, "status", resp.StatusCode,
		"duration", time.Since(start), "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized && stored {
			g.invalidate(ctx, token)
		}
		return apiErr
	}

	if handle == nil {
		return nil
	}
	if err := handle(resp); err != nil {
		if callCtx.Err() != nil {
			return g.transportError(ctx, err)
		}
		return err
	}
	return nil
}

// transportError maps a failed round trip. Cancellation by the caller is
// returned as-is; everything else, timeouts included, is a network error.
func (g *Gateway) transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
		return ctxErr
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}

func (g *Gateway) invalidate(ctx context.Context, token string) {
	g.mu.RLock()
	inv := g.invalidator
	g.mu.RUnlock()

	if inv == nil {
		return
	}
	inv.HandleUnauthorized(context.WithoutCancel(ctx), token)
}

func closeBody(body io.Reader) {
	if c, ok := body.(io.Closer); ok {
		_ = c.Close()
	}
}
