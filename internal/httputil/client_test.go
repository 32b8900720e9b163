package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStandardClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "pong")
	}))
	defer srv.Close()

	c := NewStandardClient(nil)
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "pong" {
		t.Errorf("body = %q", body)
	}
}

func TestMockClientQueuedResponses(t *testing.T) {
	m := &MockHTTPClient{}
	m.AddResponse(http.StatusOK, "first").
		AddResponse(http.StatusTeapot, "second")

	resp, err := m.Get("http://example.test/a")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "first" {
		t.Errorf("first response = %d %q", resp.StatusCode, body)
	}

	resp, err = m.Get("http://example.test/b")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("second status = %d", resp.StatusCode)
	}

	if m.RequestCount() != 2 {
		t.Errorf("RequestCount() = %d", m.RequestCount())
	}
	if m.URLs[0] != "http://example.test/a" {
		t.Errorf("recorded URL = %q", m.URLs[0])
	}
}

func TestMockClientErrors(t *testing.T) {
	queued := &MockHTTPClient{}
	queued.AddErrorResponse(errors.New("connection refused"))
	if _, err := queued.Get("http://example.test"); err == nil {
		t.Error("queued error not returned")
	}

	failing := &MockHTTPClient{DefaultError: errors.New("offline")}
	if _, err := failing.Get("http://example.test"); err == nil {
		t.Error("default error not returned")
	}
}
