// Package tunnel discovers the public URL of a locally running ngrok agent
// through its local inspection API.
package tunnel

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultAPIURL is where the ngrok agent serves its local API.
	DefaultAPIURL = "http://127.0.0.1:4040"
	// DefaultPort is the local port the tunnel and the assistant share.
	DefaultPort = 7681

	apiRequestTimeout = 2 * time.Second
)

// Tunnel is one entry of the agent's tunnel listing.
type Tunnel struct {
	Name      string `json:"name"`
	PublicURL string `json:"public_url"`
	Proto     string `json:"proto"`
	Config    struct {
		Addr string `json:"addr"`
	} `json:"config"`
}

type tunnelsResponse struct {
	Tunnels []Tunnel `json:"tunnels"`
}

// LocalPort returns the port the tunnel forwards to. Addr may be a URL
// ("http://localhost:7681"), a host:port pair or a bare port.
func (t Tunnel) LocalPort() (int, bool) {
	addr := strings.TrimSpace(t.Config.Addr)
	if addr == "" {
		return 0, false
	}

	var portStr string
	switch {
	case strings.Contains(addr, "://"):
		u, err := url.Parse(addr)
		if err != nil {
			return 0, false
		}
		portStr = u.Port()
		if portStr == "" {
			switch u.Scheme {
			case "http":
				portStr = "80"
			case "https":
				portStr = "443"
			}
		}
	case strings.Contains(addr, ":"):
		_, p, err := net.SplitHostPort(addr)
		if err != nil {
			return 0, false
		}
		portStr = p
	default:
		portStr = addr
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, false
	}
	return port, true
}

// APIClient reads the agent's tunnel listing.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewAPIClient creates a client for the agent API at baseURL.
func NewAPIClient(baseURL string) *APIClient {
	return NewAPIClientWithHTTP(baseURL, &http.Client{Timeout: apiRequestTimeout})
}

// NewAPIClientWithHTTP creates a client using a custom HTTP client (for testing).
func NewAPIClientWithHTTP(baseURL string, client *http.Client) *APIClient {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &APIClient{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the API root.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// Tunnels returns the agent's active tunnels.
func (c *APIClient) Tunnels(ctx context.Context) ([]Tunnel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tunnels", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tunnel API unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tunnel API returned status %d", resp.StatusCode)
	}

	var body tunnelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode tunnel listing: %w", err)
	}
	return body.Tunnels, nil
}
