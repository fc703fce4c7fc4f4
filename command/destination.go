package command

import (
	"context"

	"github.com/mqtools/mq/admin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	DefaultQueueTtl     = 120000
	DefaultQueueLockTtl = 10000
)

func newSearchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "List every queue and exchange of the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := a.client.Search(cmd.Context(), a.scope)
			if err != nil {
				return err
			}
			return printJSON(cmd, summaries)
		},
	}
}

// newNamedCommand builds a command that runs op against the destination
// given with --name and prints its result.
func newNamedCommand(use, short string, op func(ctx context.Context, name string) (interface{}, error)) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := op(cmd.Context(), name)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name of the destination")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newFindQueueCommand(a *app) *cobra.Command {
	return newNamedCommand("find-queue", "Check whether a queue exists", func(ctx context.Context, name string) (interface{}, error) {
		return a.client.FindQueue(ctx, a.scope, name)
	})
}

func newFindExchangeCommand(a *app) *cobra.Command {
	return newNamedCommand("find-exchange", "Check whether an exchange exists", func(ctx context.Context, name string) (interface{}, error) {
		return a.client.FindExchange(ctx, a.scope, name)
	})
}

func newDeleteQueueCommand(a *app) *cobra.Command {
	return newNamedCommand("delete-queue", "Delete a queue", func(ctx context.Context, name string) (interface{}, error) {
		logrus.Infof("Queue[%s] will be deleted.", name)
		return a.client.DeleteQueue(ctx, a.scope, name)
	})
}

func newDeleteExchangeCommand(a *app) *cobra.Command {
	return newNamedCommand("delete-exchange", "Delete an exchange", func(ctx context.Context, name string) (interface{}, error) {
		logrus.Infof("Exchange[%s] will be deleted.", name)
		return a.client.DeleteExchange(ctx, a.scope, name)
	})
}

func newPurgeCommand(a *app) *cobra.Command {
	return newNamedCommand("purge", "Drop every message of a queue", func(ctx context.Context, name string) (interface{}, error) {
		logrus.Infof("Messages of queue[%s] will be purged.", name)
		return a.client.Purge(ctx, a.scope, name)
	})
}

type queueFlags struct {
	name            string
	fifo            bool
	ttl             int64
	lockTtl         int64
	encrypted       bool
	deadLetterQueue string
	maxAttempts     int
	deliveryDelay   int64
}

func (f *queueFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "", "Name of the queue")
	flags.BoolVar(&f.fifo, "fifo", false, "Create a FIFO queue")
	flags.Int64Var(&f.ttl, "ttl", DefaultQueueTtl, "Default message time to live in milliseconds")
	flags.Int64Var(&f.lockTtl, "lock-ttl", DefaultQueueLockTtl, "Default message lock time to live in milliseconds")
	flags.BoolVar(&f.encrypted, "encrypted", false, "Encrypt messages at rest")
	flags.StringVar(&f.deadLetterQueue, "dead-letter-queue", "", "Queue receiving undeliverable messages")
	flags.IntVar(&f.maxAttempts, "max-attempts", 0, "Deliveries before a message goes to the dead-letter queue")
	flags.Int64Var(&f.deliveryDelay, "delivery-delay", 0, "Default delivery delay in milliseconds")
	cmd.MarkFlagRequired("name")
}

// spec leaves optional values unset unless their flag was given.
func (f *queueFlags) spec(cmd *cobra.Command) admin.QueueSpec {
	spec := admin.QueueSpec{
		Fifo:              f.fifo,
		DefaultTtl:        f.ttl,
		DefaultLockTtl:    f.lockTtl,
		Encrypted:         f.encrypted,
		DeadLetterQueueId: f.deadLetterQueue,
	}
	if cmd.Flags().Changed("max-attempts") {
		maxAttempts := f.maxAttempts
		spec.MaxDeliveries = &maxAttempts
	}
	if cmd.Flags().Changed("delivery-delay") {
		deliveryDelay := f.deliveryDelay
		spec.DefaultDeliveryDelay = &deliveryDelay
	}
	if spec.DeadLetterQueueId != "" && !spec.HasDeadLetter() {
		logrus.Warnf("Dead-letter queue[%s] is ignored, --max-attempts should be given with it.", spec.DeadLetterQueueId)
	}
	return spec
}

func newCreateQueueCommand(a *app) *cobra.Command {
	f := &queueFlags{}
	cmd := &cobra.Command{
		Use:   "create-queue",
		Short: "Create a queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client.CreateQueue(cmd.Context(), a.scope, f.name, f.spec(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	f.register(cmd)
	return cmd
}

func newUpdateQueueCommand(a *app) *cobra.Command {
	f := &queueFlags{}
	cmd := &cobra.Command{
		Use:   "update-queue",
		Short: "Update the settings of a queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client.UpdateQueue(cmd.Context(), a.scope, f.name, f.spec(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	f.register(cmd)
	return cmd
}

type exchangeFlags struct {
	name      string
	encrypted bool
}

func (f *exchangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Name of the exchange")
	cmd.Flags().BoolVar(&f.encrypted, "encrypted", false, "Encrypt messages at rest")
	cmd.MarkFlagRequired("name")
}

func newCreateExchangeCommand(a *app) *cobra.Command {
	f := &exchangeFlags{}
	cmd := &cobra.Command{
		Use:   "create-exchange",
		Short: "Create an exchange",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client.CreateExchange(cmd.Context(), a.scope, f.name, admin.ExchangeSpec{Encrypted: f.encrypted})
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	f.register(cmd)
	return cmd
}

func newUpdateExchangeCommand(a *app) *cobra.Command {
	f := &exchangeFlags{}
	cmd := &cobra.Command{
		Use:   "update-exchange",
		Short: "Update the settings of an exchange",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client.UpdateExchange(cmd.Context(), a.scope, f.name, admin.ExchangeSpec{Encrypted: f.encrypted})
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	f.register(cmd)
	return cmd
}
