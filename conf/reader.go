package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mqtools/mq/admin"
	"github.com/mqtools/mq/auth"
	"github.com/mqtools/mq/git"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	LocalSourceType = "local"
	GitSourceType   = "git"

	DefaultCacheAddr            = "localhost:6379"
	DefaultHttpTimeoutInSeconds = 30
)

var readFileFromGitFunc = readFileFromGit
var readFileFromLocalFunc = readFileFromLocal

var defaultConfFilepath = filepath.Join("~", ".mq", "config.yml")

// Read builds the configuration from the optional configuration file and
// the MQ_* environment variables. Environment variables win over the file.
func Read() (*Configuration, error) {

	confSourceType := os.Getenv("MQ_CONF_SOURCE_TYPE")
	conf, err := readFileFromSource(strings.ToLower(confSourceType))
	if err != nil {
		return nil, err
	}

	err = overrideFromEnv(conf)
	if err != nil {
		return nil, err
	}

	err = validate(conf)
	if err != nil {
		return nil, err
	}

	return conf, nil
}

func readFileFromSource(confSourceType string) (*Configuration, error) {

	switch confSourceType {
	case GitSourceType:
		options := git.Options{
			Url:                os.Getenv("MQ_CONF_GIT_URL"),
			PrivateKeyFilepath: addHomeDirPrefix(os.Getenv("MQ_CONF_GIT_PRIVATE_KEY_FILEPATH")),
			Passphrase:         os.Getenv("MQ_CONF_GIT_PASSPHRASE"),
		}
		confFilepath := os.Getenv("MQ_CONF_GIT_FILEPATH")

		if confFilepath == "" {
			return nil, errors.New("Git configuration filepath could not be empty.")
		}

		return readFileFromGitFunc(options, confFilepath)
	case LocalSourceType, "":
		confFilepath := os.Getenv("MQ_CONF_LOCAL_FILEPATH")

		if len(confFilepath) <= 0 {
			confFilepath = addHomeDirPrefix(defaultConfFilepath)
			if _, err := os.Stat(confFilepath); os.IsNotExist(err) {
				logrus.Debugf("No configuration file at [%s], only environment variables are used.", confFilepath)
				return &Configuration{}, nil
			}
		} else {
			confFilepath = addHomeDirPrefix(confFilepath)
		}

		return readFileFromLocalFunc(confFilepath)
	default:
		return nil, errors.Errorf("Unknown configuration source type[%s], valid types are \"local\" and \"git\".", confSourceType)
	}
}

func overrideFromEnv(conf *Configuration) error {
	stringVars := map[string]*string{
		"MQ_USERNAME":         &conf.Username,
		"MQ_PASSWORD":         &conf.Password,
		"MQ_REGION":           &conf.Region,
		"MQ_ORG_ID":           &conf.OrganizationId,
		"MQ_ENV_ID":           &conf.EnvironmentId,
		"MQ_BASE_URL":         &conf.BaseUrl,
		"MQ_LOGIN_URL":        &conf.LoginUrl,
		"MQ_TOKEN_CACHE":      &conf.TokenCache,
		"MQ_CACHE_ADDR":       &conf.CacheAddr,
		"MQ_CACHE_PASSWORD":   &conf.CachePassword,
		"MQ_CACHE_KEY_PREFIX": &conf.CacheKeyPrefix,
		"MQ_METRICS_TEXTFILE": &conf.MetricsTextfile,
		"MQ_LOG_LEVEL":        &conf.LogLevel,
	}

	for name, field := range stringVars {
		if value := os.Getenv(name); value != "" {
			*field = value
		}
	}

	if value := os.Getenv("MQ_HTTP_TIMEOUT"); value != "" {
		timeout, err := strconv.Atoi(value)
		if err != nil {
			return errors.Errorf("MQ_HTTP_TIMEOUT should be a number of seconds, got [%s].", value)
		}
		conf.HttpTimeoutInSeconds = timeout
	}

	return nil
}

func validate(conf *Configuration) error {

	if conf == nil {
		return errors.New("The configuration is empty.")
	}

	if conf.BaseUrl == "" {
		conf.BaseUrl = admin.DefaultBaseUrl
		logrus.Debugf("BaseUrl is not configured, default url[%s] is set.", admin.DefaultBaseUrl)
	}
	if conf.LoginUrl == "" {
		conf.LoginUrl = auth.DefaultLoginUrl
		logrus.Debugf("LoginUrl is not configured, default url[%s] is set.", auth.DefaultLoginUrl)
	}

	if conf.HttpTimeoutInSeconds < 0 {
		return errors.Errorf("Http timeout cannot be lesser than zero, got [%d].", conf.HttpTimeoutInSeconds)
	}
	if conf.HttpTimeoutInSeconds == 0 {
		conf.HttpTimeoutInSeconds = DefaultHttpTimeoutInSeconds
	}

	conf.TokenCache = strings.ToLower(conf.TokenCache)
	switch conf.TokenCache {
	case "":
		conf.TokenCache = RedisTokenCache
	case RedisTokenCache, MemoryTokenCache:
	default:
		return errors.Errorf("Unknown token cache[%s], valid caches are \"redis\" and \"memory\".", conf.TokenCache)
	}

	if conf.CacheAddr == "" {
		conf.CacheAddr = DefaultCacheAddr
	}
	if conf.CacheKeyPrefix == "" {
		conf.CacheKeyPrefix = auth.DefaultKeyPrefix
	}

	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		conf.LogrusLevel = logrus.InfoLevel
		conf.LogLevel = "info"
	} else {
		conf.LogrusLevel = level
	}

	return nil
}
