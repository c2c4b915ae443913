// Package client is the HTTP side of the tracking client: one base URL, one
// cookie-carrying session persisted between runs, credentials passed through
// as plain HTTP basic auth.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"ptcli/internal/features/discovery"
)

// Options configures a Client. Zero values mean no auth, no persisted
// session, and the default timeout.
type Options struct {
	Timeout     time.Duration
	User        string
	Password    string
	SessionFile string // path for the persisted cookie session, empty disables
	SessionKey  string // age passphrase; empty stores the session unencrypted
}

// DefaultTimeout bounds both the manifest fetch and a dispatched call so a
// dead server fails as NetworkFailure instead of hanging.
const DefaultTimeout = 30 * time.Second

type Client struct {
	baseURL  string
	http     *http.Client
	jar      http.CookieJar
	user     string
	password string
	session  *sessionStore
}

// New builds a client for the given url root. The session file, when
// configured and present, pre-populates the cookie jar the way the original
// client restored its pickled session.
func New(urlRoot string, opts Options) (*Client, error) {
	base, err := discovery.NormalizeBaseURL(urlRoot)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:  base,
		http:     &http.Client{Jar: jar, Timeout: timeout},
		jar:      jar,
		user:     opts.User,
		password: opts.Password,
	}

	if opts.SessionFile != "" {
		c.session = newSessionStore(opts.SessionFile, opts.SessionKey)
		if err := c.session.restore(jar, base); err != nil {
			return nil, fmt.Errorf("restoring session from %s: %w", opts.SessionFile, err)
		}
	}

	return c, nil
}

// BaseURL returns the normalized url root, without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Do executes one request, attaching basic auth when credentials are
// configured. Cookies set by the server accumulate in the jar for SaveSession.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}
	return c.http.Do(req)
}

// GetPath issues a plain GET of a server path, used by the projects shortcut
// which predates route discovery.
func (c *Client) GetPath(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+strings.TrimLeft(path, "/"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.Do(req)
}

// SaveSession writes the cookie jar back to the session file. A client
// without a configured session file saves nothing.
func (c *Client) SaveSession() error {
	if c.session == nil {
		return nil
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	return c.session.persist(c.jar.Cookies(u))
}
