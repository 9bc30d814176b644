package mailcow

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mailcow-tools/bulk-manager/internal/logger"
)

// Client is a mailcow management API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new mailcow client.
// baseURL should be the full API URL including the version path, e.g.:
// https://mail.example.com/api/v1
func NewClient(baseURL, apiKey string, skipTLSVerify bool, log *logger.Logger) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if skipTLSVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in for self-signed installations
		}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		log:        log,
	}
}

// doRequest performs an HTTP request to the mailcow API.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.baseURL + path
	c.log.HTTPRequest(method, url)

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("HTTP request failed: %s %s: %v", method, url, err)
		return nil, fmt.Errorf("request failed: %w", err)
	}

	c.log.HTTPResponse(method, url, resp.StatusCode)
	return resp, nil
}

// handleError processes non-200 API responses.
func (c *Client) handleError(method, path string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	errMsg := string(body)
	if len(errMsg) > 200 {
		errMsg = errMsg[:200] + "..."
	}
	c.log.Error("API error: %s %s -> %d: %s", method, path, resp.StatusCode, errMsg)
	return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, errMsg)
}

// checkResult decodes mailcow's result array and turns non-success entries
// into errors. Write endpoints answer 200 even on logical failures, so the
// result type is the only reliable signal.
func checkResult(body []byte) error {
	var results []APIResult
	if err := json.Unmarshal(body, &results); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("empty API response")
	}
	if results[0].Type != "success" {
		return fmt.Errorf("API returned %s: %v", results[0].Type, results[0].Msg)
	}
	return nil
}

// CreateDomain creates a mail domain with the standard bulk-setup limits.
// POST /domain
func (c *Client) CreateDomain(ctx context.Context, domain string) error {
	path := "/domain"
	req := DomainRequest{
		Domain:             domain,
		Description:        fmt.Sprintf("Domain for %s", domain),
		Aliases:            400,
		Mailboxes:          10,
		DefQuota:           3072,
		MaxQuota:           10240,
		Quota:              10240,
		Active:             1,
		RateLimitValue:     10,
		RateLimitFrame:     "s",
		BackupMX:           0,
		RelayAllRecipients: 0,
	}

	resp, err := c.doRequest(ctx, "POST", path, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleError("POST", path, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	return checkResult(body)
}

// CreateMailbox creates a mailbox.
// POST /mailbox
func (c *Client) CreateMailbox(ctx context.Context, req MailboxRequest) error {
	path := "/mailbox"
	resp, err := c.doRequest(ctx, "POST", path, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleError("POST", path, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	return checkResult(body)
}

// GetDKIM retrieves the DKIM public key for a domain. Returns an empty
// string without error when the domain has no key yet.
// GET /dkim/{domain}
func (c *Client) GetDKIM(ctx context.Context, domain string) (string, error) {
	path := fmt.Sprintf("/dkim/%s", domain)
	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.handleError("GET", path, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	// The endpoint answers with a single object on current releases and
	// with a one-element array on older ones.
	var info DKIMInfo
	if err := json.Unmarshal(body, &info); err != nil {
		var infos []DKIMInfo
		if err := json.Unmarshal(body, &infos); err != nil {
			return "", fmt.Errorf("failed to parse response: %w", err)
		}
		if len(infos) > 0 {
			info = infos[0]
		}
	}
	return info.PubKey, nil
}
