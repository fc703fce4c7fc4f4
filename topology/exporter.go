package topology

import (
	"context"
	"path/filepath"

	"github.com/mqtools/mq/admin"
	"github.com/mqtools/mq/metrics"
	"github.com/sirupsen/logrus"
)

type Source interface {
	Destinations(ctx context.Context, scope admin.Scope) ([]admin.Destination, error)
	Bindings(ctx context.Context, scope admin.Scope, exchange string) ([]admin.Binding, error)
}

type Exporter struct {
	source Source
}

func NewExporter(source Source) *Exporter {
	return &Exporter{source: source}
}

type ExportSummary struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	Path             string `json:"path"`
	DeadLetterQueues int    `json:"deadLetterQueues"`
	Queues           int    `json:"queues"`
	Exchanges        int    `json:"exchanges"`
	Bindings         int    `json:"bindings"`
}

// Export writes one file per destination of the scope into destPath, plus
// the binding list of every exchange. Files are overwritten in place; an
// interrupted export leaves the files written so far.
func (e *Exporter) Export(ctx context.Context, scope admin.Scope, destPath string) (*ExportSummary, error) {
	err := createDir(destPath)
	if err != nil {
		return nil, err
	}

	destinations, err := e.source.Destinations(ctx, scope)
	if err != nil {
		return nil, err
	}

	summary := &ExportSummary{Path: destPath}

	for _, destination := range destinations {
		if !destination.IsExchange() {
			kind := KindQueue
			if destination.IsDeadLetterTarget() {
				kind = KindDeadLetterQueue
				summary.DeadLetterQueues++
			} else {
				summary.Queues++
			}

			err = e.write(destPath, kind, destination.Name(), destination)
			if err != nil {
				return nil, err
			}
			continue
		}

		err = e.write(destPath, KindExchange, destination.ExchangeId, destination)
		if err != nil {
			return nil, err
		}
		summary.Exchanges++

		bindings, err := e.source.Bindings(ctx, scope, destination.ExchangeId)
		if err != nil {
			return nil, err
		}

		err = e.write(destPath, KindBindings, destination.ExchangeId, bindings)
		if err != nil {
			return nil, err
		}
		summary.Bindings += len(bindings)
	}

	summary.Success = true
	summary.Message = "Topology was successfully exported to " + destPath
	return summary, nil
}

func (e *Exporter) write(destPath string, kind Kind, id string, v interface{}) error {
	path := filepath.Join(destPath, FileName(kind, id))

	err := writeJSON(path, v)
	if err != nil {
		return err
	}

	metrics.IncTopologyFile("export", string(kind))
	logrus.Infof("Exported %s.", path)
	return nil
}
