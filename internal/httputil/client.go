// Package httputil provides HTTP client abstractions for testability.
package httputil

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// HTTPClient abstracts the HTTP operations the wake-light performs against
// external APIs. Use StandardClient in production and MockHTTPClient in
// tests.
type HTTPClient interface {
	// Get issues a GET to the specified URL.
	Get(url string) (*http.Response, error)
}

// StandardClient wraps *http.Client to implement HTTPClient.
type StandardClient struct {
	*http.Client
}

// NewStandardClient wraps c; nil means http.DefaultClient.
func NewStandardClient(c *http.Client) *StandardClient {
	if c == nil {
		c = http.DefaultClient
	}
	return &StandardClient{Client: c}
}

func (c *StandardClient) Get(url string) (*http.Response, error) {
	return c.Client.Get(url)
}

// MockHTTPClient returns canned responses in queue order and records every
// request URL.
type MockHTTPClient struct {
	mu        sync.Mutex
	URLs      []string
	responses []*mockResponse
	idx       int

	// DefaultError, when set, fails every request.
	DefaultError error
}

type mockResponse struct {
	statusCode int
	body       string
	err        error
}

// AddResponse queues a response for the next request.
func (m *MockHTTPClient) AddResponse(statusCode int, body string) *MockHTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, &mockResponse{statusCode: statusCode, body: body})
	return m
}

// AddErrorResponse queues a transport-level failure.
func (m *MockHTTPClient) AddErrorResponse(err error) *MockHTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, &mockResponse{err: err})
	return m
}

func (m *MockHTTPClient) Get(url string) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.URLs = append(m.URLs, url)

	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	if m.idx >= len(m.responses) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Header:     make(http.Header),
		}, nil
	}
	resp := m.responses[m.idx]
	m.idx++
	if resp.err != nil {
		return nil, resp.err
	}
	return &http.Response{
		StatusCode: resp.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(resp.body)),
		Header:     make(http.Header),
	}, nil
}

// RequestCount returns the number of requests issued so far.
func (m *MockHTTPClient) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.URLs)
}

var (
	_ HTTPClient = (*StandardClient)(nil)
	_ HTTPClient = (*MockHTTPClient)(nil)
)
