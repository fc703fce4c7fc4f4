package admin

import (
	"bytes"
	"encoding/json"
)

const (
	TypeQueue    = "queue"
	TypeExchange = "exchange"
)

// Destination is a queue or exchange as returned by the destinations
// endpoint. The upstream document is kept so it can be written back
// without losing fields this client does not know about.
type Destination struct {
	Type                 string          `json:"type,omitempty"`
	QueueId              *string         `json:"queueId,omitempty"`
	ExchangeId           string          `json:"exchangeId,omitempty"`
	Fifo                 *bool           `json:"fifo,omitempty"`
	DefaultTtl           *int64          `json:"defaultTtl,omitempty"`
	DefaultLockTtl       *int64          `json:"defaultLockTtl,omitempty"`
	Encrypted            *bool           `json:"encrypted,omitempty"`
	DeadLetterQueueId    *string         `json:"deadLetterQueueId,omitempty"`
	MaxDeliveries        *int            `json:"maxDeliveries,omitempty"`
	DefaultDeliveryDelay *int64          `json:"defaultDeliveryDelay,omitempty"`
	DeadLetterSources    json.RawMessage `json:"deadLetterSources,omitempty"`

	raw json.RawMessage
}

type plainDestination Destination

func (d *Destination) UnmarshalJSON(data []byte) error {
	err := json.Unmarshal(data, (*plainDestination)(d))
	if err != nil {
		return err
	}
	d.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (d Destination) MarshalJSON() ([]byte, error) {
	if len(d.raw) > 0 {
		return d.raw, nil
	}
	return json.Marshal(plainDestination(d))
}

func (d Destination) IsExchange() bool {
	return d.Type == TypeExchange
}

// Name is the queue id when the document has one, even an empty one, and
// the exchange id otherwise.
func (d Destination) Name() string {
	if d.QueueId != nil {
		return *d.QueueId
	}
	return d.ExchangeId
}

// IsDeadLetterTarget reports whether other queues name this queue as their
// dead-letter queue.
func (d Destination) IsDeadLetterTarget() bool {
	sources := bytes.TrimSpace(d.DeadLetterSources)
	return len(sources) > 0 && !bytes.Equal(sources, []byte("null"))
}

const DefaultMaxDeliveries = 10

// QueueSpec builds the create call for a queue read back from an export.
// Absent dead-letter settings fall back to an empty queue id and 10 max
// deliveries, which QueueSpec.payload then drops as a pair.
func (d Destination) QueueSpec() QueueSpec {
	spec := QueueSpec{
		DeadLetterQueueId:    "",
		DefaultDeliveryDelay: d.DefaultDeliveryDelay,
	}

	maxDeliveries := DefaultMaxDeliveries
	if d.MaxDeliveries != nil {
		maxDeliveries = *d.MaxDeliveries
	}
	spec.MaxDeliveries = &maxDeliveries

	if d.DeadLetterQueueId != nil {
		spec.DeadLetterQueueId = *d.DeadLetterQueueId
	}
	if d.Fifo != nil {
		spec.Fifo = *d.Fifo
	}
	if d.DefaultTtl != nil {
		spec.DefaultTtl = *d.DefaultTtl
	}
	if d.DefaultLockTtl != nil {
		spec.DefaultLockTtl = *d.DefaultLockTtl
	}
	if d.Encrypted != nil {
		spec.Encrypted = *d.Encrypted
	}
	return spec
}

func (d Destination) ExchangeSpec() ExchangeSpec {
	spec := ExchangeSpec{}
	if d.Encrypted != nil {
		spec.Encrypted = *d.Encrypted
	}
	return spec
}

// Binding is one entry of an exchange binding list. Like Destination it
// keeps the upstream document for export.
type Binding struct {
	ExchangeId string `json:"exchangeId"`
	QueueId    string `json:"queueId"`

	raw json.RawMessage
}

type plainBinding Binding

func (b *Binding) UnmarshalJSON(data []byte) error {
	err := json.Unmarshal(data, (*plainBinding)(b))
	if err != nil {
		return err
	}
	b.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (b Binding) MarshalJSON() ([]byte, error) {
	if len(b.raw) > 0 {
		return b.raw, nil
	}
	return json.Marshal(plainBinding(b))
}

// Summary is the normalized search entry.
type Summary struct {
	Name     string `json:"name"`
	Fifo     bool   `json:"fifo"`
	Exchange bool   `json:"exchange"`
}

func (d Destination) Summary() Summary {
	fifo := false
	if d.Fifo != nil {
		fifo = *d.Fifo
	}
	return Summary{
		Name:     d.Name(),
		Fifo:     fifo,
		Exchange: d.IsExchange(),
	}
}

type Existence struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message"`
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
