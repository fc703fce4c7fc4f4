package command

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mqtools/mq/conf"
	"github.com/sirupsen/logrus"
)

const testScopePath = "/organizations/org-1/environments/env-1/regions/us-east-1"

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Header http.Header
}

func (r recordedRequest) String() string {
	return r.Method + " " + r.Path
}

// fakeAdminServer serves the login endpoint and a canned administration API.
type fakeAdminServer struct {
	*httptest.Server

	mu           sync.Mutex
	logins       int
	requests     []recordedRequest
	destinations string
	bindings     map[string]string
	notFound     map[string]bool
}

func newFakeAdminServer(t *testing.T) *fakeAdminServer {
	f := &fakeAdminServer{
		destinations: "[]",
		bindings:     map[string]string{},
		notFound:     map[string]bool{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAdminServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := ioutil.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/accounts/login" {
		f.logins++
		w.Write([]byte(`{"access_token":"token-1"}`))
		return
	}

	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Body:   string(body),
		Header: r.Header.Clone(),
	})

	if f.notFound[r.URL.Path] {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
		return
	}

	if r.Method == http.MethodGet {
		switch {
		case strings.HasSuffix(r.URL.Path, "/destinations"):
			w.Write([]byte(f.destinations))
			return
		case strings.Contains(r.URL.Path, "/bindings/exchanges/"):
			exchange := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
			if bindings, ok := f.bindings[exchange]; ok {
				w.Write([]byte(bindings))
			} else {
				w.Write([]byte("[]"))
			}
			return
		}
	}

	w.Write([]byte("{}"))
}

func (f *fakeAdminServer) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	calls := make([]string, 0, len(f.requests))
	for _, request := range f.requests {
		calls = append(calls, request.String())
	}
	return calls
}

func (f *fakeAdminServer) lastRequest() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeAdminServer) configuration() *conf.Configuration {
	return &conf.Configuration{
		Username:             "mule",
		Password:             "secret",
		Region:               "us-east-1",
		OrganizationId:       "org-1",
		EnvironmentId:        "env-1",
		BaseUrl:              f.URL,
		LoginUrl:             f.URL + "/accounts/login",
		HttpTimeoutInSeconds: 5,
		TokenCache:           conf.MemoryTokenCache,
		LogLevel:             "info",
		LogrusLevel:          logrus.InfoLevel,
	}
}

func runCommand(t *testing.T, configuration *conf.Configuration, args ...string) (string, error) {
	defer func() { readConfFunc = conf.Read }()
	readConfFunc = func() (*conf.Configuration, error) {
		return configuration, nil
	}

	a := &app{invocationId: "invocation-1"}
	root := newRootCommand(a)

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(ioutil.Discard)
	root.SetArgs(args)

	err := root.Execute()
	a.close()
	return out.String(), err
}
