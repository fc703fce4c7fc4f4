package topology

import (
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/mqtools/mq/admin"
	"github.com/mqtools/mq/metrics"
	"github.com/sirupsen/logrus"
)

type Target interface {
	CreateQueue(ctx context.Context, scope admin.Scope, name string, spec admin.QueueSpec) (*admin.Result, error)
	CreateExchange(ctx context.Context, scope admin.Scope, name string, spec admin.ExchangeSpec) (*admin.Result, error)
	BindQueue(ctx context.Context, scope admin.Scope, exchange, queue string) (*admin.Result, error)
}

type Stage string

const (
	StageDeadLetterQueues Stage = "dead-letter queues"
	StageQueues           Stage = "queues"
	StageExchanges        Stage = "exchanges"
	StageBindings         Stage = "bindings"
)

// StageError tells which stage and which file stopped an import.
type StageError struct {
	Stage Stage
	File  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("Import stage[%s] failed on file[%s]: %s", e.Stage, e.File, e.Err)
}

func (e *StageError) Cause() error {
	return e.Err
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type DestinationRecord struct {
	File        string
	Name        string
	Destination admin.Destination
}

type BindingsRecord struct {
	File     string
	Bindings []admin.Binding
}

// Plan is an export directory read into memory, one list per stage, each
// in file name order.
type Plan struct {
	DeadLetterQueues []DestinationRecord
	Queues           []DestinationRecord
	Exchanges        []DestinationRecord
	Bindings         []BindingsRecord
}

func stageOf(kind Kind) Stage {
	switch kind {
	case KindDeadLetterQueue:
		return StageDeadLetterQueues
	case KindQueue:
		return StageQueues
	case KindExchange:
		return StageExchanges
	default:
		return StageBindings
	}
}

// LoadPlan reads every export file of srcPath. Files that do not follow the
// export naming are skipped.
func LoadPlan(srcPath string) (*Plan, error) {
	entries, err := ioutil.ReadDir(srcPath)
	if err != nil {
		return nil, &FilesystemError{Op: "read directory", Path: srcPath, Err: err}
	}

	plan := &Plan{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		kind, id, ok := ParseFileName(entry.Name())
		if !ok {
			logrus.Debugf("File[%s] is not a topology file, skipped.", entry.Name())
			continue
		}

		path := filepath.Join(srcPath, entry.Name())

		if kind == KindBindings {
			bindings := []admin.Binding{}
			err = readJSON(path, &bindings)
			if err != nil {
				return nil, &StageError{Stage: StageBindings, File: entry.Name(), Err: err}
			}
			plan.Bindings = append(plan.Bindings, BindingsRecord{File: entry.Name(), Bindings: bindings})
			continue
		}

		destination := admin.Destination{}
		err = readJSON(path, &destination)
		if err != nil {
			return nil, &StageError{Stage: stageOf(kind), File: entry.Name(), Err: err}
		}

		record := DestinationRecord{File: entry.Name(), Name: destination.Name(), Destination: destination}
		if record.Name == "" {
			record.Name = id
		}

		switch kind {
		case KindDeadLetterQueue:
			plan.DeadLetterQueues = append(plan.DeadLetterQueues, record)
		case KindQueue:
			plan.Queues = append(plan.Queues, record)
		case KindExchange:
			plan.Exchanges = append(plan.Exchanges, record)
		}
	}

	return plan, nil
}

type Importer struct {
	target Target
}

func NewImporter(target Target) *Importer {
	return &Importer{target: target}
}

type ImportSummary struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	DeadLetterQueues int    `json:"deadLetterQueues"`
	Queues           int    `json:"queues"`
	Exchanges        int    `json:"exchanges"`
	Bindings         int    `json:"bindings"`
}

func (i *Importer) Import(ctx context.Context, scope admin.Scope, srcPath string) (*ImportSummary, error) {
	plan, err := LoadPlan(srcPath)
	if err != nil {
		return nil, err
	}

	summary, err := i.Apply(ctx, scope, plan)
	if err != nil {
		return nil, err
	}
	summary.Message = "Topology was successfully imported from " + srcPath
	return summary, nil
}

// Apply replays the plan stage by stage. A queue may name a dead-letter
// queue only once that queue exists, and a binding needs both of its ends,
// so no stage starts before the previous one is complete. The first failure
// stops the import; whatever was created stays.
func (i *Importer) Apply(ctx context.Context, scope admin.Scope, plan *Plan) (*ImportSummary, error) {
	summary := &ImportSummary{}

	err := i.createQueues(ctx, scope, StageDeadLetterQueues, KindDeadLetterQueue, plan.DeadLetterQueues)
	if err != nil {
		return nil, err
	}
	summary.DeadLetterQueues = len(plan.DeadLetterQueues)

	err = i.createQueues(ctx, scope, StageQueues, KindQueue, plan.Queues)
	if err != nil {
		return nil, err
	}
	summary.Queues = len(plan.Queues)

	for _, record := range plan.Exchanges {
		_, err = i.target.CreateExchange(ctx, scope, record.Name, record.Destination.ExchangeSpec())
		if err != nil {
			return nil, &StageError{Stage: StageExchanges, File: record.File, Err: err}
		}
		metrics.IncTopologyFile("import", string(KindExchange))
		logrus.Infof("Exchange[%s] is created from %s.", record.Name, record.File)
	}
	summary.Exchanges = len(plan.Exchanges)

	for _, record := range plan.Bindings {
		for _, binding := range record.Bindings {
			_, err = i.target.BindQueue(ctx, scope, binding.ExchangeId, binding.QueueId)
			if err != nil {
				return nil, &StageError{Stage: StageBindings, File: record.File, Err: err}
			}
			logrus.Infof("Queue[%s] is bound to exchange[%s].", binding.QueueId, binding.ExchangeId)
			summary.Bindings++
		}
		metrics.IncTopologyFile("import", string(KindBindings))
	}

	summary.Success = true
	return summary, nil
}

func (i *Importer) createQueues(ctx context.Context, scope admin.Scope, stage Stage, kind Kind, records []DestinationRecord) error {
	for _, record := range records {
		_, err := i.target.CreateQueue(ctx, scope, record.Name, record.Destination.QueueSpec())
		if err != nil {
			return &StageError{Stage: stage, File: record.File, Err: err}
		}
		metrics.IncTopologyFile("import", string(kind))
		logrus.Infof("Queue[%s] is created from %s.", record.Name, record.File)
	}
	return nil
}
