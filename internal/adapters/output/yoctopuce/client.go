package yoctopuce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"yocto-led-bridge/internal/domain/model"
	"yocto-led-bridge/internal/ports"
)

const (
	apiVersion = "2.1.go"

	// DefaultPort is the VirtualHub / YoctoHub HTTP port.
	DefaultPort = "4444"

	// localHub is where "usb" registrations go: USB modules are reached
	// through the VirtualHub running on this machine.
	localHub = "http://127.0.0.1:" + DefaultPort
)

// Client talks to Yoctopuce hubs over their HTTP API. Each RegisterHub call
// returns an independent session; the client only tracks which hub URLs are
// currently registered.
type Client struct {
	httpClient *http.Client
	mu         sync.Mutex
	registered map[string]int
}

func NewClient(requestTimeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		registered: make(map[string]int),
	}
}

func (c *Client) APIVersion() string {
	return apiVersion
}

type endpoint struct {
	base     string
	username string
	password string
}

// parseHubURL accepts the same forms as the Yoctopuce libraries: "usb",
// "host", "host:port", "user:pass@host" and full http(s) URLs.
func parseHubURL(raw string) (endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return endpoint{}, fmt.Errorf("empty hub url")
	}
	if strings.EqualFold(raw, "usb") {
		return endpoint{base: localHub}, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return endpoint{}, fmt.Errorf("invalid hub url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return endpoint{}, fmt.Errorf("unsupported hub url scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return endpoint{}, fmt.Errorf("invalid hub url %q: missing host", raw)
	}
	host := u.Host
	if u.Port() == "" && u.Scheme == "http" {
		host = u.Hostname() + ":" + DefaultPort
	}
	ep := endpoint{base: u.Scheme + "://" + host + strings.TrimSuffix(u.Path, "/")}
	if u.User != nil {
		ep.username = u.User.Username()
		ep.password, _ = u.User.Password()
	}
	return ep, nil
}

// TestHub checks that the hub answers within timeout.
func (c *Client) TestHub(ctx context.Context, rawURL string, timeout time.Duration) error {
	ep, err := parseHubURL(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrHubUnreachable, err)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	var probe map[string]interface{}
	if err := c.getJSON(ctx, ep, "/api/module.json", nil, &probe); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrHubUnreachable, err)
	}
	return nil
}

// RegisterHub loads the hub's device tree and returns a session. When the
// hub is already registered the session is still returned, with ErrDoubleAccess.
func (c *Client) RegisterHub(ctx context.Context, rawURL string) (ports.Session, error) {
	ep, err := parseHubURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrRegistrationFailed, err)
	}
	var root apiRoot
	if err := c.getJSON(ctx, ep, "/api.json", nil, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrRegistrationFailed, err)
	}
	if root.Module.SerialNumber == "" {
		return nil, fmt.Errorf("%w: %s did not report a serial number", ports.ErrRegistrationFailed, ep.base)
	}

	c.mu.Lock()
	already := c.registered[ep.base] > 0
	c.registered[ep.base]++
	c.mu.Unlock()

	s := &session{client: c, ep: ep}
	if already {
		return s, fmt.Errorf("%w: %s", ports.ErrDoubleAccess, ep.base)
	}
	return s, nil
}

func (c *Client) release(ep endpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.registered[ep.base] <= 1 {
		delete(c.registered, ep.base)
		return
	}
	c.registered[ep.base]--
}

type statusError struct {
	path string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("hub API error on %s: %d", e.path, e.code)
}

func (c *Client) getJSON(ctx context.Context, ep endpoint, path string, query url.Values, out interface{}) error {
	u := ep.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if ep.username != "" {
		req.SetBasicAuth(ep.username, ep.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{path: path, code: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type apiRoot struct {
	Module struct {
		SerialNumber string `json:"serialNumber"`
		LogicalName  string `json:"logicalName"`
		ProductName  string `json:"productName"`
	} `json:"module"`
	Services struct {
		YellowPages map[string][]yellowPage `json:"yellowPages"`
	} `json:"services"`
}

type yellowPage struct {
	HardwareID  string `json:"hardwareId"`
	LogicalName string `json:"logicalName"`
	Index       int    `json:"index"`
}

// splitID splits "SERIAL.function" into its parts.
func splitID(id model.ModuleID) (serial, function string, err error) {
	serial, function, ok := strings.Cut(string(id), ".")
	if !ok || serial == "" || function == "" {
		return "", "", fmt.Errorf("%w: malformed hardware id %q", ports.ErrModuleNotFound, id)
	}
	return serial, function, nil
}
