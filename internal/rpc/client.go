package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/larkwiot/shelfscan/internal/config"
	"github.com/samber/mo"
)

const sessionExpired = "odoo.http.SessionExpiredException"

type request struct {
	JsonRpc string `json:"jsonrpc"`
	Method  string `json:"method"`
	Id      int64  `json:"id"`
	Params  any    `json:"params"`
}

type response struct {
	Id     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *Fault          `json:"error"`
}

type callKwParams struct {
	Model  string         `json:"model"`
	Method string         `json:"method"`
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

// Client speaks the Odoo flavour of JSON-RPC 2.0 over HTTP.
type Client struct {
	url      string
	database string
	login    string
	password string
	model    string
	method   string

	http   *http.Client
	nextId atomic.Int64

	sessionLock sync.Mutex
	uid         mo.Option[int64]
}

func NewClient(conf *config.BackendConfig) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Jar = jar
	httpClient.Timeout = time.Duration(conf.TimeoutSeconds) * time.Second

	return &Client{
		url:      strings.TrimRight(conf.Url, "/"),
		database: conf.Database,
		login:    conf.Login,
		password: conf.Password,
		model:    conf.Model,
		method:   conf.Method,
		http:     httpClient,
	}, nil
}

func (c *Client) Name() string {
	return "backend"
}

func (c *Client) call(ctx context.Context, path string, params any, result any) error {
	body, err := json.Marshal(request{
		JsonRpc: "2.0",
		Method:  "call",
		Id:      c.nextId.Add(1),
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("warning: %s%s returned status %d: %s\n", c.url, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
		return &Fault{
			Code:       resp.StatusCode,
			Text:       fmt.Sprintf("backend returned status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	var envelope response
	err = json.NewDecoder(resp.Body).Decode(&envelope)
	if err != nil {
		return &DecodeError{Method: path, Err: err}
	}

	if envelope.Error != nil {
		envelope.Error.StatusCode = resp.StatusCode
		return envelope.Error
	}

	if result == nil {
		return nil
	}

	if len(envelope.Result) == 0 {
		return &DecodeError{Method: path, Err: fmt.Errorf("response has no result")}
	}

	err = json.Unmarshal(envelope.Result, result)
	if err != nil {
		return &DecodeError{Method: path, Err: err}
	}

	return nil
}

type authenticateParams struct {
	Db       string `json:"db"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type authenticateResult struct {
	Uid json.RawMessage `json:"uid"`
}

// Authenticate opens a session; the session cookie is kept in the client's jar.
// Without a configured login there is nothing to do.
func (c *Client) Authenticate(ctx context.Context) error {
	if len(c.login) == 0 {
		return nil
	}

	c.sessionLock.Lock()
	defer c.sessionLock.Unlock()
	return c.authenticate(ctx)
}

func (c *Client) authenticate(ctx context.Context) error {
	var result authenticateResult
	err := c.call(ctx, "/web/session/authenticate", authenticateParams{
		Db:       c.database,
		Login:    c.login,
		Password: c.password,
	}, &result)
	if err != nil {
		return err
	}

	var uid int64
	if json.Unmarshal(result.Uid, &uid) != nil || uid == 0 {
		return &Fault{Text: fmt.Sprintf("authentication failed for login %s", c.login)}
	}

	c.uid = mo.Some(uid)
	log.Printf("info: authenticated to %s as %s (uid %d)\n", c.url, c.login, uid)
	return nil
}

func (c *Client) ensureSession(ctx context.Context) error {
	if len(c.login) == 0 {
		return nil
	}

	c.sessionLock.Lock()
	defer c.sessionLock.Unlock()

	if c.uid.IsPresent() {
		return nil
	}
	return c.authenticate(ctx)
}

func (c *Client) forgetSession() {
	c.sessionLock.Lock()
	defer c.sessionLock.Unlock()
	c.uid = mo.None[int64]()
}

// CallKW invokes a model method. An expired session is dropped so the next call
// re-authenticates, but the failed call itself is not repeated.
func (c *Client) CallKW(ctx context.Context, model string, method string, args []any, kwargs map[string]any, result any) error {
	err := c.ensureSession(ctx)
	if err != nil {
		return err
	}

	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	path := fmt.Sprintf("/web/dataset/call_kw/%s/%s", model, method)
	err = c.call(ctx, path, callKwParams{Model: model, Method: method, Args: args, Kwargs: kwargs}, result)

	if fault, ok := err.(*Fault); ok && fault.Data.Name == sessionExpired {
		c.forgetSession()
	}

	return err
}
