package vressdk

import (
	"net/http"
	"strings"
	"time"
)

// Client is a client for the VRES backend. It provides access to
// unauthenticated operations and can create authenticated Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	limits *limiterSet
}

// NewClient creates a new VRES backend client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limits: newLimiterSet(),
	}
}

// WithToken creates an authenticated session from a backend-issued access
// token. The backend owns token validity; the session just presents it.
func (c *Client) WithToken(token string) *Session {
	return &Session{client: c, token: token}
}

// Session is an authenticated view of the Client. All Session methods send
// the access token as a bearer credential.
type Session struct {
	client *Client
	token  string
}

// Token returns the session's access token.
func (s *Session) Token() string { return s.token }
