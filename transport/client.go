package transport

import (
	"io/ioutil"
	"net/http"
	"time"

	"github.com/mqtools/mq/metrics"
)

const DefaultTimeout = 30 * time.Second

var DefaultClient = &http.Client{Timeout: DefaultTimeout}

type doFunc func(client *Client, request *Request) (*http.Response, error)

// Client executes each request exactly once. Failed requests are never
// replayed; callers decide what a non-2xx status means.
type Client struct {
	DoFunc doFunc
	client *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{client: &http.Client{Timeout: timeout}}
}

func (c *Client) Do(request *Request) (*http.Response, error) {
	if c.DoFunc != nil {
		return c.DoFunc(c, request)
	}
	return DoOnce(c, request)
}

func (c *Client) httpClient() *http.Client {
	if c.client != nil {
		return c.client
	}
	return DefaultClient
}

func DoOnce(c *Client, request *Request) (*http.Response, error) {
	start := time.Now()

	response, err := c.httpClient().Do(request.Request)
	if err != nil {
		metrics.ObserveRequest(request.Method, 0, time.Since(start))
		return nil, &Error{Method: request.Method, Url: request.URL.String(), Err: err}
	}

	metrics.ObserveRequest(request.Method, response.StatusCode, time.Since(start))
	return response, nil
}

// ReadBody drains and closes the response body. A body that cannot be read
// is reported inline so that status errors still carry something useful.
func ReadBody(response *http.Response) string {
	defer response.Body.Close()

	body, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return "could not read response body: " + err.Error()
	}
	return string(body)
}

func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}
