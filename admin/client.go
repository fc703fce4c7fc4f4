package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mqtools/mq/transport"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const DefaultBaseUrl = "https://anypoint.mulesoft.com/mq/admin/api/v1"

// TokenProvider hands out bearer tokens for a set of credentials.
type TokenProvider interface {
	GetToken(ctx context.Context, username, password string) (string, error)
}

type Credentials struct {
	Username string
	Password string
}

type Client struct {
	baseUrl     string
	http        *transport.Client
	tokens      TokenProvider
	credentials Credentials
	requestId   string
}

func NewClient(baseUrl string, httpClient *transport.Client, tokens TokenProvider, credentials Credentials, requestId string) *Client {
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	return &Client{
		baseUrl:     strings.TrimRight(baseUrl, "/"),
		http:        httpClient,
		tokens:      tokens,
		credentials: credentials,
		requestId:   requestId,
	}
}

// HttpError is any non-2xx answer of the control plane.
type HttpError struct {
	Method string
	Url    string
	Status int
	Body   string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("%s %s failed, status: %d %s, message: %s",
		e.Method, e.Url, e.Status, http.StatusText(e.Status), e.Body)
}

func IsNotFound(err error) bool {
	var httpErr *HttpError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method string, scope Scope, path string, payload interface{}, out interface{}) error {
	token, err := c.tokens.GetToken(ctx, c.credentials.Username, c.credentials.Password)
	if err != nil {
		return err
	}

	url := c.baseUrl + path

	request, err := transport.NewJSONRequest(ctx, method, url, payload)
	if err != nil {
		return err
	}
	request.Header.Add("X-ANYPNT-ENV-ID", scope.EnvironmentId)
	request.Header.Add("Authorization", "bearer "+token)
	if c.requestId != "" {
		request.Header.Add("X-Request-ID", c.requestId)
	}

	response, err := c.http.Do(request)
	if err != nil {
		return err
	}

	body := transport.ReadBody(response)
	logrus.Debugf("%s %s returned %d.", method, url, response.StatusCode)

	if !transport.IsSuccess(response.StatusCode) {
		return &HttpError{Method: method, Url: url, Status: response.StatusCode, Body: body}
	}

	if out != nil {
		err = json.Unmarshal([]byte(body), out)
		if err != nil {
			return errors.Wrapf(err, "Response of %s %s could not be parsed", method, url)
		}
	}
	return nil
}

func (c *Client) Destinations(ctx context.Context, scope Scope) ([]Destination, error) {
	destinations := []Destination{}
	err := c.do(ctx, "GET", scope, scope.path("destinations"), nil, &destinations)
	if err != nil {
		return nil, err
	}
	return destinations, nil
}

// Search lists every destination of the scope in upstream order.
func (c *Client) Search(ctx context.Context, scope Scope) ([]Summary, error) {
	destinations, err := c.Destinations(ctx, scope)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(destinations))
	for _, destination := range destinations {
		summaries = append(summaries, destination.Summary())
	}
	return summaries, nil
}

func (c *Client) FindQueue(ctx context.Context, scope Scope, name string) (*Existence, error) {
	return c.find(ctx, scope, scope.path("destinations", "queues", name), name)
}

func (c *Client) FindExchange(ctx context.Context, scope Scope, name string) (*Existence, error) {
	return c.find(ctx, scope, scope.path("destinations", "exchanges", name), name)
}

func (c *Client) find(ctx context.Context, scope Scope, path, name string) (*Existence, error) {
	err := c.do(ctx, "GET", scope, path, nil, nil)
	if IsNotFound(err) {
		return &Existence{Exists: false, Message: name + " does not exist"}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Existence{Exists: true, Message: name + " already exists"}, nil
}

func (c *Client) CreateQueue(ctx context.Context, scope Scope, name string, spec QueueSpec) (*Result, error) {
	err := c.do(ctx, "PUT", scope, scope.path("destinations", "queues", name), spec.payload(), nil)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: name + " was successfully created"}, nil
}

func (c *Client) UpdateQueue(ctx context.Context, scope Scope, name string, spec QueueSpec) (*Result, error) {
	err := c.do(ctx, "PATCH", scope, scope.path("destinations", "queues", name), spec.payload(), nil)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: name + " was successfully updated"}, nil
}

func (c *Client) CreateExchange(ctx context.Context, scope Scope, name string, spec ExchangeSpec) (*Result, error) {
	err := c.do(ctx, "PUT", scope, scope.path("destinations", "exchanges", name), spec.payload(), nil)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: name + " was successfully created"}, nil
}

func (c *Client) UpdateExchange(ctx context.Context, scope Scope, name string, spec ExchangeSpec) (*Result, error) {
	err := c.do(ctx, "PATCH", scope, scope.path("destinations", "exchanges", name), spec.payload(), nil)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: name + " was successfully updated"}, nil
}

func (c *Client) BindQueue(ctx context.Context, scope Scope, exchange, queue string) (*Result, error) {
	err := c.do(ctx, "PUT", scope, scope.path("bindings", "exchanges", exchange, "queues", queue), &emptyPayload{}, nil)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: queue + " was successfully bound to " + exchange}, nil
}

func (c *Client) UnbindQueue(ctx context.Context, scope Scope, exchange, queue string) (*Result, error) {
	err := c.do(ctx, "DELETE", scope, scope.path("bindings", "exchanges", exchange, "queues", queue), nil, nil)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: queue + " was successfully unbound from " + exchange}, nil
}

// Bindings lists the queues bound to an exchange.
func (c *Client) Bindings(ctx context.Context, scope Scope, exchange string) ([]Binding, error) {
	bindings := []Binding{}
	err := c.do(ctx, "GET", scope, scope.path("bindings", "exchanges", exchange), nil, &bindings)
	if err != nil {
		return nil, err
	}
	return bindings, nil
}

func (c *Client) DeleteQueue(ctx context.Context, scope Scope, name string) (*Result, error) {
	err := c.do(ctx, "DELETE", scope, scope.path("destinations", "queues", name), nil, nil)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: name + " was successfully deleted"}, nil
}

func (c *Client) DeleteExchange(ctx context.Context, scope Scope, name string) (*Result, error) {
	err := c.do(ctx, "DELETE", scope, scope.path("destinations", "exchanges", name), nil, nil)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: name + " was successfully deleted"}, nil
}

// Purge drops every message of the queue and keeps the queue itself.
func (c *Client) Purge(ctx context.Context, scope Scope, name string) (*Result, error) {
	err := c.do(ctx, "DELETE", scope, scope.path("destinations", "queues", name, "messages"), nil, nil)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: name + " was successfully purged"}, nil
}
