package command

import (
	"context"

	"github.com/mqtools/mq/admin"
	"github.com/spf13/cobra"
)

func newBindingCommand(use, short string, op func(ctx context.Context, exchange, queue string) (*admin.Result, error)) *cobra.Command {
	var exchange, queue string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := op(cmd.Context(), exchange, queue)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&exchange, "exchange-name", "", "Name of the exchange")
	cmd.Flags().StringVar(&queue, "queue-name", "", "Name of the queue")
	cmd.MarkFlagRequired("exchange-name")
	cmd.MarkFlagRequired("queue-name")
	return cmd
}

func newBindQueueCommand(a *app) *cobra.Command {
	return newBindingCommand("bind-queue", "Bind a queue to an exchange", func(ctx context.Context, exchange, queue string) (*admin.Result, error) {
		return a.client.BindQueue(ctx, a.scope, exchange, queue)
	})
}

func newUnbindQueueCommand(a *app) *cobra.Command {
	return newBindingCommand("unbind-queue", "Remove the binding of a queue to an exchange", func(ctx context.Context, exchange, queue string) (*admin.Result, error) {
		return a.client.UnbindQueue(ctx, a.scope, exchange, queue)
	})
}
