package admin

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mqtools/mq/transport"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testScope = Scope{OrganizationId: "org-1", EnvironmentId: "env-1", Region: "us-east-1"}

const testScopePath = "/organizations/org-1/environments/env-1/regions/us-east-1"

type staticTokens struct {
	token string
	err   error
}

func (s *staticTokens) GetToken(ctx context.Context, username, password string) (string, error) {
	return s.token, s.err
}

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Header http.Header
}

func newTestClient(t *testing.T, status int, response string) (*Client, *[]recordedRequest, func()) {
	requests := &[]recordedRequest{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		*requests = append(*requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Body:   string(body),
			Header: r.Header,
		})
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))

	client := NewClient(ts.URL, transport.NewClient(time.Second), &staticTokens{token: "tkn"}, Credentials{"user", "secret"}, "req-1")
	return client, requests, ts.Close
}

func TestRequestHeaders(t *testing.T) {
	client, requests, closeFunc := newTestClient(t, http.StatusOK, `[]`)
	defer closeFunc()

	_, err := client.Search(context.Background(), testScope)
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	request := (*requests)[0]
	assert.Equal(t, "GET", request.Method)
	assert.Equal(t, testScopePath+"/destinations", request.Path)
	assert.Equal(t, "env-1", request.Header.Get("X-ANYPNT-ENV-ID"))
	assert.Equal(t, "bearer tkn", request.Header.Get("Authorization"))
	assert.Equal(t, "req-1", request.Header.Get("X-Request-ID"))
}

func TestSearchNormalizesDestinations(t *testing.T) {
	client, _, closeFunc := newTestClient(t, http.StatusOK, `[
		{"type":"queue","queueId":"orders","fifo":true},
		{"type":"exchange","exchangeId":"events"},
		{"type":"queue","queueId":"audit"},
		{"type":"queue","queueId":"both","exchangeId":"ignored","fifo":false}
	]`)
	defer closeFunc()

	summaries, err := client.Search(context.Background(), testScope)
	require.NoError(t, err)

	assert.Equal(t, []Summary{
		{Name: "orders", Fifo: true, Exchange: false},
		{Name: "events", Fifo: false, Exchange: true},
		{Name: "audit", Fifo: false, Exchange: false},
		{Name: "both", Fifo: false, Exchange: false},
	}, summaries)
}

func TestSearchOutputShape(t *testing.T) {
	client, _, closeFunc := newTestClient(t, http.StatusOK, `[{"type":"exchange","exchangeId":"events"}]`)
	defer closeFunc()

	summaries, err := client.Search(context.Background(), testScope)
	require.NoError(t, err)

	output, err := json.Marshal(summaries)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"events","fifo":false,"exchange":true}]`, string(output))
}

func TestFindQueue(t *testing.T) {
	testCases := []struct {
		status   int
		expected *Existence
		fails    bool
	}{
		{http.StatusOK, &Existence{Exists: true, Message: "orders already exists"}, false},
		{http.StatusNotFound, &Existence{Exists: false, Message: "orders does not exist"}, false},
		{http.StatusForbidden, nil, true},
		{http.StatusInternalServerError, nil, true},
	}

	for _, testCase := range testCases {
		client, requests, closeFunc := newTestClient(t, testCase.status, `{}`)

		existence, err := client.FindQueue(context.Background(), testScope, "orders")
		if testCase.fails {
			var httpErr *HttpError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, testCase.status, httpErr.Status)
		} else {
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, existence)
		}
		assert.Equal(t, testScopePath+"/destinations/queues/orders", (*requests)[0].Path)

		closeFunc()
	}
}

func TestFindExchangeNotFound(t *testing.T) {
	client, requests, closeFunc := newTestClient(t, http.StatusNotFound, ``)
	defer closeFunc()

	existence, err := client.FindExchange(context.Background(), testScope, "events")
	require.NoError(t, err)

	assert.Equal(t, &Existence{Exists: false, Message: "events does not exist"}, existence)
	assert.Equal(t, testScopePath+"/destinations/exchanges/events", (*requests)[0].Path)
}

func TestNonFindOperationsFailOnNotFound(t *testing.T) {
	client, _, closeFunc := newTestClient(t, http.StatusNotFound, `{"message":"not found"}`)
	defer closeFunc()

	_, err := client.DeleteQueue(context.Background(), testScope, "orders")
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), `{"message":"not found"}`)
}

func TestCreateQueueUsesPut(t *testing.T) {
	client, requests, closeFunc := newTestClient(t, http.StatusCreated, `{}`)
	defer closeFunc()

	maxDeliveries := 5
	result, err := client.CreateQueue(context.Background(), testScope, "orders", QueueSpec{
		DefaultTtl:        120000,
		DefaultLockTtl:    10000,
		DeadLetterQueueId: "orders-dlq",
		MaxDeliveries:     &maxDeliveries,
	})
	require.NoError(t, err)

	assert.Equal(t, &Result{Success: true, Message: "orders was successfully created"}, result)
	request := (*requests)[0]
	assert.Equal(t, "PUT", request.Method)
	assert.Equal(t, testScopePath+"/destinations/queues/orders", request.Path)
	assert.JSONEq(t, `{"defaultTtl":120000,"defaultLockTtl":10000,"encrypted":false,"fifo":false,"deadLetterQueueId":"orders-dlq","maxDeliveries":5}`, request.Body)
	assert.Equal(t, "application/json; charset=UTF-8", request.Header.Get("Content-Type"))
}

func TestUpdateQueueUsesPatchWithSamePayload(t *testing.T) {
	client, requests, closeFunc := newTestClient(t, http.StatusOK, `{}`)
	defer closeFunc()

	delay := int64(500)
	spec := QueueSpec{Fifo: true, DefaultTtl: 1, DefaultLockTtl: 2, Encrypted: true, DefaultDeliveryDelay: &delay}

	result, err := client.UpdateQueue(context.Background(), testScope, "orders", spec)
	require.NoError(t, err)

	assert.Equal(t, "orders was successfully updated", result.Message)
	assert.Equal(t, "PATCH", (*requests)[0].Method)
	assert.JSONEq(t, `{"defaultTtl":1,"defaultLockTtl":2,"encrypted":true,"fifo":true,"defaultDeliveryDelay":500}`, (*requests)[0].Body)
}

func TestExchangeOperations(t *testing.T) {
	client, requests, closeFunc := newTestClient(t, http.StatusOK, `{}`)
	defer closeFunc()

	_, err := client.CreateExchange(context.Background(), testScope, "events", ExchangeSpec{Encrypted: true})
	require.NoError(t, err)
	_, err = client.UpdateExchange(context.Background(), testScope, "events", ExchangeSpec{})
	require.NoError(t, err)
	_, err = client.DeleteExchange(context.Background(), testScope, "events")
	require.NoError(t, err)

	require.Len(t, *requests, 3)
	assert.Equal(t, "PUT", (*requests)[0].Method)
	assert.JSONEq(t, `{"encrypted":true}`, (*requests)[0].Body)
	assert.Equal(t, "PATCH", (*requests)[1].Method)
	assert.JSONEq(t, `{"encrypted":false}`, (*requests)[1].Body)
	assert.Equal(t, "DELETE", (*requests)[2].Method)
	for _, request := range *requests {
		assert.Equal(t, testScopePath+"/destinations/exchanges/events", request.Path)
	}
}

func TestBindingOperations(t *testing.T) {
	client, requests, closeFunc := newTestClient(t, http.StatusOK, `{}`)
	defer closeFunc()

	result, err := client.BindQueue(context.Background(), testScope, "events", "orders")
	require.NoError(t, err)
	assert.Equal(t, "orders was successfully bound to events", result.Message)

	result, err = client.UnbindQueue(context.Background(), testScope, "events", "orders")
	require.NoError(t, err)
	assert.Equal(t, "orders was successfully unbound from events", result.Message)

	assert.Equal(t, "PUT", (*requests)[0].Method)
	assert.Equal(t, `{}`, (*requests)[0].Body)
	assert.Equal(t, "DELETE", (*requests)[1].Method)
	assert.Empty(t, (*requests)[1].Body)
	for _, request := range *requests {
		assert.Equal(t, testScopePath+"/bindings/exchanges/events/queues/orders", request.Path)
	}
}

func TestListBindings(t *testing.T) {
	client, requests, closeFunc := newTestClient(t, http.StatusOK, `[{"exchangeId":"events","queueId":"orders"}]`)
	defer closeFunc()

	bindings, err := client.Bindings(context.Background(), testScope, "events")
	require.NoError(t, err)

	require.Len(t, bindings, 1)
	assert.Equal(t, "events", bindings[0].ExchangeId)
	assert.Equal(t, "orders", bindings[0].QueueId)
	assert.Equal(t, testScopePath+"/bindings/exchanges/events", (*requests)[0].Path)
}

func TestPurgeAndDeleteQueue(t *testing.T) {
	client, requests, closeFunc := newTestClient(t, http.StatusNoContent, ``)
	defer closeFunc()

	result, err := client.Purge(context.Background(), testScope, "orders")
	require.NoError(t, err)
	assert.Equal(t, "orders was successfully purged", result.Message)

	result, err = client.DeleteQueue(context.Background(), testScope, "orders")
	require.NoError(t, err)
	assert.Equal(t, "orders was successfully deleted", result.Message)

	assert.Equal(t, testScopePath+"/destinations/queues/orders/messages", (*requests)[0].Path)
	assert.Equal(t, "DELETE", (*requests)[0].Method)
	assert.Equal(t, testScopePath+"/destinations/queues/orders", (*requests)[1].Path)
}

func TestTokenErrorStopsRequest(t *testing.T) {
	client, requests, closeFunc := newTestClient(t, http.StatusOK, `[]`)
	defer closeFunc()
	client.tokens = &staticTokens{err: errors.New("Login failed")}

	_, err := client.Search(context.Background(), testScope)

	assert.EqualError(t, err, "Login failed")
	assert.Empty(t, *requests)
}

func TestTransportErrorIsReturned(t *testing.T) {
	client, _, closeFunc := newTestClient(t, http.StatusOK, `[]`)
	closeFunc()

	_, err := client.Search(context.Background(), testScope)

	var transportErr *transport.Error
	assert.True(t, errors.As(err, &transportErr))
}

func TestScopeValidate(t *testing.T) {
	assert.NoError(t, testScope.Validate())
	assert.Error(t, Scope{EnvironmentId: "e", Region: "us-east-1"}.Validate())
	assert.Error(t, Scope{OrganizationId: "o", Region: "us-east-1"}.Validate())
	assert.Error(t, Scope{OrganizationId: "o", EnvironmentId: "e", Region: "US-EAST-1"}.Validate())
	assert.Error(t, Scope{OrganizationId: "o", EnvironmentId: "e", Region: "mars-1"}.Validate())
}
