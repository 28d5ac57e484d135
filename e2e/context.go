package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mysafepocket/internal/platform/health"
	"mysafepocket/internal/platform/metrics"
	"mysafepocket/internal/pocket/catalog"
	"mysafepocket/internal/pocket/identity"
	"mysafepocket/internal/pocket/issuer"
	"mysafepocket/internal/pocket/service"
	"mysafepocket/internal/pocket/store"
	httptransport "mysafepocket/internal/transport/http"
)

// fixedNow pins key generation and issuance so scenarios can assert exact signatures.
var fixedNow = time.UnixMilli(1700000000000).UTC()

// TestContext holds state between test steps
type TestContext struct {
	server           *httptest.Server
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	LastCredentialID string
	LastProof        []byte
}

// NewTestContext starts an in-process pocket server backed by the in-memory store.
func NewTestContext() *TestContext {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := service.NewService(store.NewInMemoryStore(),
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithIdentityManager(identity.NewManager(
			identity.WithClock(func() time.Time { return fixedNow }),
			identity.WithNonce(func() string { return "1a2b3c4d" }),
		)),
		service.WithIssuer(issuer.New(catalog.Default(), issuer.WithClock(func() time.Time { return fixedNow }))),
	)
	server := httptest.NewServer(httptransport.NewRouter(httptransport.Config{
		Pockets:  svc,
		Health:   health.New("e2e"),
		Metrics:  m,
		Gatherer: reg,
		Logger:   logger,
	}))

	return &TestContext{
		server:     server,
		BaseURL:    server.URL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Close stops the in-process server.
func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
	}
}

func (tc *TestContext) do(method, path, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// POST makes a JSON POST request and stores the response
func (tc *TestContext) POST(path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return tc.do(http.MethodPost, path, "application/json", bytes.NewReader(data))
}

// POSTRaw posts body verbatim as text.
func (tc *TestContext) POSTRaw(path string, body []byte) error {
	return tc.do(http.MethodPost, path, "text/plain", bytes.NewReader(body))
}

// Upload posts a multipart document upload with size bytes of content.
func (tc *TestContext) Upload(path, fileName string, size int) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := part.Write(bytes.Repeat([]byte{'x'}, size)); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return tc.do(http.MethodPost, path, mw.FormDataContentType(), &body)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, "", nil)
}

// DELETE makes a DELETE request and stores the response
func (tc *TestContext) DELETE(path string) error {
	return tc.do(http.MethodDelete, path, "", nil)
}

// GetResponseField extracts a field from the JSON response. Nested fields are
// addressed with dots, e.g. "proof.signature".
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	current := data
	for _, part := range strings.Split(field, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %s not found in response", field)
		}
		current, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %s not found in response", field)
		}
	}
	return current, nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}
