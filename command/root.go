package command

import (
	"context"
	"encoding/json"

	"github.com/mqtools/mq/admin"
	"github.com/mqtools/mq/auth"
	"github.com/mqtools/mq/conf"
	"github.com/mqtools/mq/metrics"
	"github.com/mqtools/mq/transport"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var readConfFunc = conf.Read
var newTokenStoreFunc = newTokenStore

type globalFlags struct {
	username       string
	password       string
	region         string
	organizationId string
	environmentId  string
	tokenCache     string
	timeout        int
}

// apply copies every flag that was given over the configuration.
func (f *globalFlags) apply(c *conf.Configuration) error {
	overrides := []struct {
		value string
		field *string
	}{
		{f.username, &c.Username},
		{f.password, &c.Password},
		{f.region, &c.Region},
		{f.organizationId, &c.OrganizationId},
		{f.environmentId, &c.EnvironmentId},
	}
	for _, override := range overrides {
		if override.value != "" {
			*override.field = override.value
		}
	}

	if f.timeout < 0 {
		return errors.Errorf("Timeout cannot be lesser than zero, got [%d].", f.timeout)
	}
	if f.timeout > 0 {
		c.HttpTimeoutInSeconds = f.timeout
	}

	switch f.tokenCache {
	case "":
	case conf.RedisTokenCache, conf.MemoryTokenCache:
		c.TokenCache = f.tokenCache
	default:
		return errors.Errorf("Unknown token cache[%s], valid caches are \"redis\" and \"memory\".", f.tokenCache)
	}
	return nil
}

type app struct {
	invocationId string
	flags        globalFlags

	conf       *conf.Configuration
	scope      admin.Scope
	client     *admin.Client
	closeStore func() error
}

// Execute runs the mq command line with the process arguments.
func Execute(ctx context.Context, invocationId string) error {
	a := &app{invocationId: invocationId}
	err := newRootCommand(a).ExecuteContext(ctx)
	a.close()
	return err
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "mq",
		Short: "Manage Anypoint MQ queues, exchanges and bindings",
		Long: `mq manages the queues, exchanges and bindings of an Anypoint MQ
environment through the administration API, and exports or imports the
whole topology of an environment as a set of JSON files.`,
		PersistentPreRunE: a.prepare,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.username, "username", "", "Anypoint username (env: MQ_USERNAME)")
	flags.StringVar(&a.flags.password, "password", "", "Anypoint password (env: MQ_PASSWORD)")
	flags.StringVarP(&a.flags.region, "region", "r", "", "Region of the environment (env: MQ_REGION)")
	flags.StringVar(&a.flags.organizationId, "organization-id", "", "Organization id (env: MQ_ORG_ID)")
	flags.StringVar(&a.flags.environmentId, "environment-id", "", "Environment id (env: MQ_ENV_ID)")
	flags.StringVar(&a.flags.tokenCache, "token-cache", "", "Token cache: redis or memory (env: MQ_TOKEN_CACHE)")
	flags.IntVar(&a.flags.timeout, "timeout", 0, "Request timeout in seconds (env: MQ_HTTP_TIMEOUT)")

	root.AddCommand(
		newSearchCommand(a),
		newFindQueueCommand(a),
		newFindExchangeCommand(a),
		newCreateQueueCommand(a),
		newUpdateQueueCommand(a),
		newCreateExchangeCommand(a),
		newUpdateExchangeCommand(a),
		newBindQueueCommand(a),
		newUnbindQueueCommand(a),
		newDeleteQueueCommand(a),
		newDeleteExchangeCommand(a),
		newPurgeCommand(a),
		newExportCommand(a),
		newImportCommand(a),
		newVersionCommand(),
	)

	return root
}

// prepare resolves the configuration and builds the control-plane client
// shared by every subcommand.
func (a *app) prepare(cmd *cobra.Command, args []string) error {
	if !needsClient(cmd) {
		return nil
	}

	configuration, err := readConfFunc()
	if err != nil {
		return errors.Wrap(err, "Could not read configuration")
	}
	a.conf = configuration

	err = a.flags.apply(configuration)
	if err != nil {
		return err
	}

	logrus.SetLevel(configuration.LogrusLevel)

	a.scope = admin.Scope{
		OrganizationId: configuration.OrganizationId,
		EnvironmentId:  configuration.EnvironmentId,
		Region:         configuration.Region,
	}
	err = a.scope.Validate()
	if err != nil {
		return err
	}

	if configuration.Username == "" || configuration.Password == "" {
		return errors.New("Username and password should be provided with --username/--password or MQ_USERNAME/MQ_PASSWORD.")
	}

	httpClient := transport.NewClient(configuration.HttpTimeout())

	store, closeStore := newTokenStoreFunc(configuration)
	a.closeStore = closeStore

	tokens := auth.NewCache(store, httpClient, configuration.LoginUrl)
	credentials := admin.Credentials{Username: configuration.Username, Password: configuration.Password}
	a.client = admin.NewClient(configuration.BaseUrl, httpClient, tokens, credentials, a.invocationId)

	logrus.Debugf("Command[%s] will run against organization[%s], environment[%s], region[%s].",
		cmd.Name(), a.scope.OrganizationId, a.scope.EnvironmentId, a.scope.Region)
	return nil
}

func needsClient(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", "completion":
			return false
		}
	}
	return true
}

func (a *app) close() {
	if a.closeStore != nil {
		if err := a.closeStore(); err != nil {
			logrus.Warnf("Token store could not be closed: %s", err)
		}
	}

	if a.conf != nil {
		if err := metrics.WriteTextfile(a.conf.MetricsTextfile); err != nil {
			logrus.Warnf("Metrics could not be written to [%s]: %s", a.conf.MetricsTextfile, err)
		}
	}
}

func newTokenStore(c *conf.Configuration) (auth.TokenStore, func() error) {
	if c.TokenCache == conf.MemoryTokenCache {
		return auth.NewMemoryStore(), func() error { return nil }
	}

	store := auth.NewRedisStore(c.CacheAddr, c.CachePassword, c.CacheKeyPrefix)
	return store, store.Close
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
