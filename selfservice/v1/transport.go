package v1

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"axiapac.com/selfservice/security"
	"go.uber.org/zap"
)

// TokenSource returns the current bearer token, or "" when logged out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Transport handles low-level HTTP and authentication
type Transport struct {
	BaseURL    string
	Tokens     TokenSource
	HTTPClient *http.Client
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewTransport creates a transport with base URL and token source
func NewTransport(baseURL string, tokens TokenSource, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Tokens:     tokens,
		HTTPClient: &http.Client{},
		Logger:     logger,
		Now:        time.Now,
	}
}

// helper: build full URL with query params
func (t *Transport) buildURL(path string, query map[string]string) (string, error) {
	u, err := url.Parse(t.BaseURL + path)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range query {
		if v == "" {
			continue
		}
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (t *Transport) token(ctx context.Context) (string, Outcome, bool) {
	if t.Tokens == nil {
		return "", Fail(KindUnauthenticated, "Not logged in"), false
	}
	token, err := t.Tokens.Token(ctx)
	if err != nil {
		return "", Fail(KindUnknown, fmt.Sprintf("read token: %v", err)), false
	}
	if token == "" {
		return "", Fail(KindUnauthenticated, "Not logged in"), false
	}
	if security.TokenExpired(token, t.Now()) {
		return "", Fail(KindUnauthenticated, "Token expired"), false
	}
	return token, Outcome{}, true
}

// Do issues exactly one attempt bounded by timeout. The token is read fresh
// on every call so a concurrent logout is seen by the next attempt.
func (t *Transport) Do(ctx context.Context, req *Request, timeout time.Duration) Outcome {
	log := t.Logger.With(
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.String("request_id", req.RequestID),
	)

	var token string
	if !req.Anonymous {
		tok, failure, ok := t.token(ctx)
		if !ok {
			log.Debug("request not sent", zap.String("kind", failure.Kind.String()))
			return failure
		}
		token = tok
	}

	fullURL, err := t.buildURL(req.Path, req.Query)
	if err != nil {
		return Fail(KindUnknown, fmt.Sprintf("invalid url: %v", err))
	}

	body, contentType, err := req.body()
	if err != nil {
		return Fail(KindUnknown, fmt.Sprintf("encode request: %v", err))
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return Fail(KindUnknown, fmt.Sprintf("build request: %v", err))
	}

	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	if req.RequestID != "" {
		httpReq.Header.Set("X-Request-Id", req.RequestID)
	}

	start := time.Now()
	resp, err := t.HTTPClient.Do(httpReq)
	if err != nil {
		outcome := NormalizeError(err)
		log.Debug("request failed", zap.String("kind", outcome.Kind.String()), zap.Error(err))
		return outcome
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome := NormalizeError(err)
		log.Debug("read body failed", zap.String("kind", outcome.Kind.String()), zap.Error(err))
		return outcome
	}

	outcome := Normalize(resp.StatusCode, data)
	log.Debug("request completed",
		zap.Int("status", resp.StatusCode),
		zap.Bool("ok", outcome.OK()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return outcome
}
