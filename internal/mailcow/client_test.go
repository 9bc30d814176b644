package mailcow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailcow-tools/bulk-manager/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{NoColor: true})
}

func TestCreateDomain(t *testing.T) {
	var gotReq DomainRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/domain", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"type":"success","msg":["domain_added","example.com"]}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/api/v1", "test-key", false, testLogger())
	err := client.CreateDomain(context.Background(), "example.com")
	require.NoError(t, err)

	assert.Equal(t, "example.com", gotReq.Domain)
	assert.Equal(t, 400, gotReq.Aliases)
	assert.Equal(t, 10240, gotReq.Quota)
	assert.Equal(t, 1, gotReq.Active)
	assert.Equal(t, "s", gotReq.RateLimitFrame)
}

func TestCreateDomain_LogicalFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// mailcow reports failures with HTTP 200
		_, _ = w.Write([]byte(`[{"type":"danger","msg":"domain_exists"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", false, testLogger())
	err := client.CreateDomain(context.Background(), "example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "danger")
	assert.Contains(t, err.Error(), "domain_exists")
}

func TestCreateDomain_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key", false, testLogger())
	err := client.CreateDomain(context.Background(), "example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCreateMailbox(t *testing.T) {
	var gotReq MailboxRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mailbox", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`[{"type":"success","msg":"mailbox_added"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", false, testLogger())
	req := MailboxRequest{
		LocalPart: "john",
		Domain:    "example.com",
		Name:      "John Doe",
		Password:  "secret",
		Password2: "secret",
		Quota:     3072,
		Active:    1,
	}
	require.NoError(t, client.CreateMailbox(context.Background(), req))

	assert.Equal(t, "john", gotReq.LocalPart)
	assert.Equal(t, gotReq.Password, gotReq.Password2)
}

func TestGetDKIM_Object(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dkim/example.com", r.URL.Path)
		_, _ = w.Write([]byte(`{"pubkey":"MIIBIjAN","dkim_selector":"dkim","length":"2048"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", false, testLogger())
	key, err := client.GetDKIM(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "MIIBIjAN", key)
}

func TestGetDKIM_Array(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"pubkey":"MIIBIjAN"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", false, testLogger())
	key, err := client.GetDKIM(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "MIIBIjAN", key)
}

func TestGetDKIM_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", false, testLogger())
	key, err := client.GetDKIM(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestClient_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "test-key", false, testLogger())
	err := client.CreateDomain(context.Background(), "example.com")
	require.Error(t, err)
}
