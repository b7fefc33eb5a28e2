// Package client talks to the to-do server: account endpoints over JSON and
// everything else over GraphQL.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/machinebox/graphql"
	"go.uber.org/zap"
)

const taskFields = `_id text email owner checked private createdAt`

const appQuery = `query AppQuery {
  tasks { ` + taskFields + ` }
  currentUser { _id emails { address } }
  incompleteCount
}`

type Client struct {
	baseURL    string
	httpClient *http.Client
	gql        *graphql.Client
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a client for the server at baseURL (e.g. http://localhost:8080).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	gqlHTTP := *c.httpClient
	gqlHTTP.Transport = statusTransport{next: transportOrDefault(c.httpClient.Transport)}
	c.gql = graphql.NewClient(c.baseURL+"/graphql", graphql.WithHTTPClient(&gqlHTTP))
	c.gql.Log = func(s string) { c.logger.Debug(s) }
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.postJSON(ctx, "/register", map[string]string{"email": email, "password": password}, nil)
}

// Login signs in and keeps the token for later requests.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.postJSON(ctx, "/login", map[string]string{"email": email, "password": password}, &resp); err != nil {
		return err
	}
	c.SetToken(resp.Token)
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.postJSON(ctx, "/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) AppQuery(ctx context.Context) (*AppData, error) {
	var data AppData
	if err := c.run(ctx, graphql.NewRequest(appQuery), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) AddTask(ctx context.Context, text string) (*Task, error) {
	req := graphql.NewRequest(`mutation AddTask($text: String!) {
  addTask(text: $text) { ` + taskFields + ` }
}`)
	req.Var("text", text)

	var resp struct {
		AddTask Task `json:"addTask"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp.AddTask, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) (*Task, error) {
	req := graphql.NewRequest(`mutation DeleteTask($id: String!) {
  deleteTask(id: $id) { ` + taskFields + ` }
}`)
	req.Var("id", id)

	var resp struct {
		DeleteTask Task `json:"deleteTask"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp.DeleteTask, nil
}

func (c *Client) SetChecked(ctx context.Context, id string, checked bool) (*Task, error) {
	req := graphql.NewRequest(`mutation SetChecked($id: String!, $checked: Boolean!) {
  setChecked(id: $id, setChecked: $checked) { ` + taskFields + ` }
}`)
	req.Var("id", id)
	req.Var("checked", checked)

	var resp struct {
		SetChecked Task `json:"setChecked"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp.SetChecked, nil
}

func (c *Client) SetPrivate(ctx context.Context, id string, private bool) (*Task, error) {
	req := graphql.NewRequest(`mutation SetPrivate($id: String!, $private: Boolean!) {
  setPrivate(id: $id, setToPrivate: $private) { ` + taskFields + ` }
}`)
	req.Var("id", id)
	req.Var("private", private)

	var resp struct {
		SetPrivate Task `json:"setPrivate"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp.SetPrivate, nil
}

func (c *Client) run(ctx context.Context, req *graphql.Request, out interface{}) error {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if err := c.gql.Run(ctx, req, out); err != nil {
		return normalize(err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeStatusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
