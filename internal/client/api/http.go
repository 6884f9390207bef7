package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/common"
	"github.com/dkazakov/fieldsale/internal/logging"
	"github.com/google/uuid"
)

const requestTimeout = 30 * time.Second

// HTTPClient implements Client against the backend REST API.
// Every request carries a fresh X-Correlation-ID and, once logged in, a
// Bearer token from the TokenSource.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger
}

// NewHTTPClient returns a client for the API rooted at baseURL
// (e.g. "http://127.0.0.1:8080/api/v1").
func NewHTTPClient(baseURL string, tokens TokenSource, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		tokens:  tokens,
		log:     log,
	}
}

// do sends one JSON request and decodes the body into out (when non-nil).
// The caller still has to check the envelope's success flag.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-ID", uuid.NewString())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request completed",
		"method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %w", method, path, common.ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, ErrRemoteFailure)
	}

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return &DecodeError{Endpoint: path, Err: err}
	}
	return nil
}

// checkEnvelope turns success=false into the retryable remote-failure error.
func checkEnvelope(path string, env envelope) error {
	if !env.Success {
		return fmt.Errorf("%s: success=false (%s): %w", path, env.Error, ErrRemoteFailure)
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var env loginEnvelope
	if err := c.do(ctx, http.MethodPost, "/login", loginRequest{Username: username, Password: password}, &env); err != nil {
		return nil, err
	}
	if err := checkEnvelope("/login", env.envelope); err != nil {
		return nil, err
	}
	if env.Data == nil || env.Data.Token == "" || env.Data.OwnerID <= 0 {
		return nil, &DecodeError{Endpoint: "/login", Err: fmt.Errorf("missing token or owner id")}
	}
	return &LoginResult{Token: env.Data.Token, OwnerID: env.Data.OwnerID}, nil
}

func (c *HTTPClient) CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	var env contactEnvelope
	if err := c.do(ctx, http.MethodPost, "/contacts", contactToWire(contact), &env); err != nil {
		return nil, err
	}
	if err := checkEnvelope("/contacts", env.envelope); err != nil {
		return nil, err
	}
	created, err := contactFromWire(env.Data)
	if err != nil {
		return nil, &DecodeError{Endpoint: "/contacts", Err: err}
	}
	return created, nil
}

func (c *HTTPClient) UpdateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	path := fmt.Sprintf("/contacts/%d", contact.ID.Int64())
	var env contactEnvelope
	if err := c.do(ctx, http.MethodPut, path, contactToWire(contact), &env); err != nil {
		return nil, err
	}
	if err := checkEnvelope(path, env.envelope); err != nil {
		return nil, err
	}
	updated, err := contactFromWire(env.Data)
	if err != nil {
		return nil, &DecodeError{Endpoint: path, Err: err}
	}
	return updated, nil
}

func (c *HTTPClient) DeleteContact(ctx context.Context, serverID int64) error {
	path := fmt.Sprintf("/contacts/%d", serverID)
	var env contactEnvelope
	if err := c.do(ctx, http.MethodDelete, path, nil, &env); err != nil {
		return err
	}
	return checkEnvelope(path, env.envelope)
}

func (c *HTTPClient) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	var env productEnvelope
	if err := c.do(ctx, http.MethodPost, "/products", productToWire(product), &env); err != nil {
		return nil, err
	}
	if err := checkEnvelope("/products", env.envelope); err != nil {
		return nil, err
	}
	created, err := productFromWire(env.Data)
	if err != nil {
		return nil, &DecodeError{Endpoint: "/products", Err: err}
	}
	return created, nil
}

func (c *HTTPClient) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	path := fmt.Sprintf("/products/%d", product.ID.Int64())
	var env productEnvelope
	if err := c.do(ctx, http.MethodPut, path, productToWire(product), &env); err != nil {
		return nil, err
	}
	if err := checkEnvelope(path, env.envelope); err != nil {
		return nil, err
	}
	updated, err := productFromWire(env.Data)
	if err != nil {
		return nil, &DecodeError{Endpoint: path, Err: err}
	}
	return updated, nil
}

func (c *HTTPClient) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var env suppliersEnvelope
	if err := c.do(ctx, http.MethodGet, "/suppliers", nil, &env); err != nil {
		return nil, err
	}
	if err := checkEnvelope("/suppliers", env.envelope); err != nil {
		return nil, err
	}
	result := make([]models.Supplier, 0, len(env.Data))
	for _, p := range env.Data {
		s, err := supplierFromWire(p)
		if err != nil {
			return nil, &DecodeError{Endpoint: "/suppliers", Err: err}
		}
		result = append(result, s)
	}
	return result, nil
}
