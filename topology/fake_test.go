package topology

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/mqtools/mq/admin"
	"github.com/pkg/errors"
)

// fakeControlPlane is an in-memory scope. It rejects queues whose
// dead-letter queue does not exist yet and bindings with a missing end,
// like the real service does.
type fakeControlPlane struct {
	destinations []admin.Destination
	bindings     map[string][]admin.Binding
	queueSpecs   map[string]admin.QueueSpec
	calls        []string
	failOn       string
}

func newFakeControlPlane() *fakeControlPlane {
	return &fakeControlPlane{
		bindings:   make(map[string][]admin.Binding),
		queueSpecs: make(map[string]admin.QueueSpec),
	}
}

func (f *fakeControlPlane) load(documents ...string) {
	for _, document := range documents {
		destination := admin.Destination{}
		if err := json.Unmarshal([]byte(document), &destination); err != nil {
			panic(err)
		}
		f.destinations = append(f.destinations, destination)
	}
}

func (f *fakeControlPlane) has(kind, name string) bool {
	for _, destination := range f.destinations {
		if destination.Type == kind && destination.Name() == name {
			return true
		}
	}
	return false
}

func (f *fakeControlPlane) Destinations(ctx context.Context, scope admin.Scope) ([]admin.Destination, error) {
	f.calls = append(f.calls, "destinations")
	return f.destinations, nil
}

func (f *fakeControlPlane) Bindings(ctx context.Context, scope admin.Scope, exchange string) ([]admin.Binding, error) {
	f.calls = append(f.calls, "bindings:"+exchange)
	if f.failOn == "bindings:"+exchange {
		return nil, errors.New("bindings unavailable")
	}
	bindings := f.bindings[exchange]
	if bindings == nil {
		bindings = []admin.Binding{}
	}
	return bindings, nil
}

func (f *fakeControlPlane) CreateQueue(ctx context.Context, scope admin.Scope, name string, spec admin.QueueSpec) (*admin.Result, error) {
	f.calls = append(f.calls, "queue:"+name)
	if f.failOn == "queue:"+name {
		return nil, &admin.HttpError{Method: "PUT", Status: 500, Body: "boom"}
	}
	if spec.HasDeadLetter() && !f.has(admin.TypeQueue, spec.DeadLetterQueueId) {
		return nil, &admin.HttpError{Method: "PUT", Status: 400, Body: "dead letter queue does not exist"}
	}

	fifo := spec.Fifo
	queueId := name
	f.destinations = append(f.destinations, admin.Destination{Type: admin.TypeQueue, QueueId: &queueId, Fifo: &fifo})
	f.queueSpecs[name] = spec
	return &admin.Result{Success: true}, nil
}

func (f *fakeControlPlane) CreateExchange(ctx context.Context, scope admin.Scope, name string, spec admin.ExchangeSpec) (*admin.Result, error) {
	f.calls = append(f.calls, "exchange:"+name)
	encrypted := spec.Encrypted
	f.destinations = append(f.destinations, admin.Destination{Type: admin.TypeExchange, ExchangeId: name, Encrypted: &encrypted})
	return &admin.Result{Success: true}, nil
}

func (f *fakeControlPlane) BindQueue(ctx context.Context, scope admin.Scope, exchange, queue string) (*admin.Result, error) {
	f.calls = append(f.calls, "bind:"+exchange+":"+queue)
	if !f.has(admin.TypeExchange, exchange) || !f.has(admin.TypeQueue, queue) {
		return nil, &admin.HttpError{Method: "PUT", Status: 404, Body: "binding end does not exist"}
	}
	f.bindings[exchange] = append(f.bindings[exchange], admin.Binding{ExchangeId: exchange, QueueId: queue})
	return &admin.Result{Success: true}, nil
}

func (f *fakeControlPlane) names(kind string) []string {
	names := []string{}
	for _, destination := range f.destinations {
		if destination.Type == kind {
			names = append(names, destination.Name())
		}
	}
	sort.Strings(names)
	return names
}

func (f *fakeControlPlane) bindingPairs() []string {
	pairs := []string{}
	for _, bindings := range f.bindings {
		for _, binding := range bindings {
			pairs = append(pairs, binding.ExchangeId+"->"+binding.QueueId)
		}
	}
	sort.Strings(pairs)
	return pairs
}
