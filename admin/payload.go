package admin

// QueueSpec is the caller side view of a queue create or update.
type QueueSpec struct {
	Fifo                 bool
	DefaultTtl           int64
	DefaultLockTtl       int64
	Encrypted            bool
	DeadLetterQueueId    string
	MaxDeliveries        *int
	DefaultDeliveryDelay *int64
}

type queuePayload struct {
	DefaultTtl           int64  `json:"defaultTtl"`
	DefaultLockTtl       int64  `json:"defaultLockTtl"`
	Encrypted            bool   `json:"encrypted"`
	Fifo                 bool   `json:"fifo"`
	DeadLetterQueueId    string `json:"deadLetterQueueId,omitempty"`
	MaxDeliveries        *int   `json:"maxDeliveries,omitempty"`
	DefaultDeliveryDelay *int64 `json:"defaultDeliveryDelay,omitempty"`
}

// HasDeadLetter is true only when both the dead-letter queue and the max
// deliveries are given. Otherwise neither is sent and upstream defaults apply.
func (s QueueSpec) HasDeadLetter() bool {
	return s.DeadLetterQueueId != "" && s.MaxDeliveries != nil && *s.MaxDeliveries != 0
}

func (s QueueSpec) payload() *queuePayload {
	payload := &queuePayload{
		DefaultTtl:           s.DefaultTtl,
		DefaultLockTtl:       s.DefaultLockTtl,
		Encrypted:            s.Encrypted,
		Fifo:                 s.Fifo,
		DefaultDeliveryDelay: s.DefaultDeliveryDelay,
	}
	if s.HasDeadLetter() {
		maxDeliveries := *s.MaxDeliveries
		payload.DeadLetterQueueId = s.DeadLetterQueueId
		payload.MaxDeliveries = &maxDeliveries
	}
	return payload
}

type ExchangeSpec struct {
	Encrypted bool
}

type exchangePayload struct {
	Encrypted bool `json:"encrypted"`
}

func (s ExchangeSpec) payload() *exchangePayload {
	return &exchangePayload{Encrypted: s.Encrypted}
}

type emptyPayload struct{}
