// Package api implements the request executor: it builds and issues HTTP
// requests against the backend, consults the response cache for eligible
// reads, classifies failures into a fixed taxonomy, and transparently
// performs one re-authentication-and-retry cycle on credential expiry.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vitalog/vitalog/internal/client/cache"
	"github.com/vitalog/vitalog/internal/client/storage"
	"github.com/vitalog/vitalog/internal/models"
	pkgapi "github.com/vitalog/vitalog/pkg/api"
)

// CredentialStore is the surface the executor needs from the credential
// service.
type CredentialStore interface {
	// DeviceID returns the stable installation identity, creating it on
	// first access
	DeviceID(ctx context.Context) (string, error)

	// ValidAccessToken returns a sendable access token, if one is stored
	ValidAccessToken(ctx context.Context) (token string, ok bool)

	// SaveCredentials persists a fresh credential pair wholesale
	SaveCredentials(ctx context.Context, creds *storage.Credentials) error
}

// Client executes requests against the backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      CredentialStore
	cache      *cache.Cache
	logger     *slog.Logger
	reauth     singleflight.Group
}

// NewClient creates a new executor.
func NewClient(baseURL string, creds CredentialStore, responseCache *cache.Cache, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		cache:   responseCache,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// carry the credential header across redirects
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Do executes an endpoint with an optional JSON body, decoding the response
// into result when result is non-nil. Cache-eligible reads with no body are
// served from the response cache when possible.
func (c *Client) Do(ctx context.Context, ep Endpoint, body, result any) error {
	var payload []byte
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("failed to marshal request body: %w", err)}
		}
		payload = data
		contentType = "application/json"
	}

	return c.execute(ctx, ep, payload, contentType, body == nil, result)
}

// DoNoContent executes an endpoint expecting no response payload.
func (c *Client) DoNoContent(ctx context.Context, ep Endpoint, body any) error {
	return c.Do(ctx, ep, body, nil)
}

// Upload executes a multipart upload. Uploads are mutations: never cached,
// always invalidating their category's topics on success.
func (c *Client) Upload(ctx context.Context, ep Endpoint, fieldName, fileName string, content []byte, result any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		return &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("failed to build multipart body: %w", err)}
	}
	if _, err := part.Write(content); err != nil {
		return &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("failed to write multipart content: %w", err)}
	}
	if err := writer.Close(); err != nil {
		return &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("failed to finalize multipart body: %w", err)}
	}

	return c.execute(ctx, ep, buf.Bytes(), writer.FormDataContentType(), false, result)
}

// DeleteRecord issues the remote delete for a synchronized record,
// dispatching on its type. Used by the optimistic deletion queue's
// confirmation path.
func (c *Client) DeleteRecord(ctx context.Context, record *models.Record) error {
	switch record.Type {
	case models.RecordTypeMeal:
		return c.DoNoContent(ctx, DeleteMeal(record.ID), nil)
	case models.RecordTypeWater:
		return c.DoNoContent(ctx, DeleteWater(record.ID), nil)
	}
	return &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("unknown record type %q", record.Type)}
}

// execute runs the full request algorithm: cache consult, send, one
// reauth-and-retry cycle on 401, cache population/invalidation, decode.
func (c *Client) execute(ctx context.Context, ep Endpoint, payload []byte, contentType string, allowCache bool, result any) error {
	ttl, cacheable := ep.Category.CachePolicy()
	useCache := cacheable && allowCache

	if useCache {
		if cached, ok := c.cache.Get(ep.CacheKey()); ok {
			c.logger.Debug("cache hit", "path", ep.Path)
			return c.decode(cached, result)
		}
	}

	respBody, apiErr := c.send(ctx, ep, payload, contentType)
	if apiErr != nil && apiErr.Kind == KindAuthExpired && ep.Category.RequiresAuth() {
		if c.reauthenticate(ctx) {
			// exactly one retry per logical call; a second 401 is
			// surfaced as-is
			respBody, apiErr = c.send(ctx, ep, payload, contentType)
		}
		// on reauthentication failure the original 401 stands
	}
	if apiErr != nil {
		return apiErr
	}

	if topics := ep.Category.InvalidationTopics(); len(topics) > 0 {
		for _, topic := range topics {
			removed := c.cache.Invalidate(topic)
			if removed > 0 {
				c.logger.Debug("cache invalidated", "topic", topic, "entries", removed)
			}
		}
	}
	if useCache {
		c.cache.Set(ep.CacheKey(), respBody, ttl)
	}

	return c.decode(respBody, result)
}

// send issues the request once and classifies the outcome. It never
// retries and never touches the cache.
func (c *Client) send(ctx context.Context, ep Endpoint, payload []byte, contentType string) ([]byte, *Error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, c.baseURL+ep.Path, bodyReader)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if ep.Category.RequiresAuth() {
		// an expired token is never sent; going out unauthenticated lets
		// the 401 path run the device exchange
		if token, ok := c.creds.ValidAccessToken(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		c.logger.Warn("request failed", "method", ep.Method, "path", ep.Path, "duration_ms", latency.Milliseconds(), "error", err)
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("request completed",
		"method", ep.Method,
		"path", ep.Path,
		"status", resp.StatusCode,
		"duration_ms", latency.Milliseconds(),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	detail := errorDetail(respBody)
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &Error{Kind: KindAuthExpired, StatusCode: resp.StatusCode, Detail: detail}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{
			Kind:       KindRateLimited,
			StatusCode: resp.StatusCode,
			Detail:     detail,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode >= 500:
		return nil, &Error{Kind: KindServer, StatusCode: resp.StatusCode, Detail: detail}
	default:
		return nil, &Error{Kind: KindClient, StatusCode: resp.StatusCode, Detail: detail}
	}
}

// reauthenticate runs the device exchange and persists the fresh pair.
// Concurrent callers share one in-flight exchange; the flow never recurses
// because the exchange endpoint is unauthenticated and send never retries.
func (c *Client) reauthenticate(ctx context.Context) bool {
	v, _, _ := c.reauth.Do("device-exchange", func() (any, error) {
		deviceID, err := c.creds.DeviceID(ctx)
		if err != nil {
			c.logger.Error("reauthentication failed: no device identity", "error", err)
			return false, nil
		}

		payload, err := json.Marshal(pkgapi.DeviceAuthRequest{DeviceID: deviceID})
		if err != nil {
			return false, nil
		}

		respBody, apiErr := c.send(ctx, DeviceAuth(), payload, "application/json")
		if apiErr != nil {
			c.logger.Warn("device exchange failed", "error", apiErr)
			return false, nil
		}

		var tokens pkgapi.TokenResponse
		if err := json.Unmarshal(respBody, &tokens); err != nil {
			c.logger.Error("device exchange returned undecodable body", "error", err)
			return false, nil
		}

		if err := c.creds.SaveCredentials(ctx, &storage.Credentials{
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		}); err != nil {
			c.logger.Error("failed to persist credentials", "error", err)
			return false, nil
		}

		c.logger.Info("reauthenticated", "device_id", deviceID)
		return true, nil
	})

	ok, _ := v.(bool)
	return ok
}

func (c *Client) decode(respBody []byte, result any) error {
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return &Error{Kind: KindDecoding, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// errorDetail extracts the structured detail string from a non-2xx body,
// falling back to the error field.
func errorDetail(respBody []byte) string {
	var errResp pkgapi.ErrorResponse
	if err := json.Unmarshal(respBody, &errResp); err != nil {
		return ""
	}
	if errResp.Detail != "" {
		return errResp.Detail
	}
	return errResp.Error
}

// parseRetryAfter parses a Retry-After header given as delta seconds or an
// HTTP date. Returns 0 when absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
