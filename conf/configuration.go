package conf

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	RedisTokenCache  = "redis"
	MemoryTokenCache = "memory"
)

type Configuration struct {
	Username       string `json:"username" yaml:"username" toml:"username"`
	Password       string `json:"password" yaml:"password" toml:"password"`
	Region         string `json:"region" yaml:"region" toml:"region"`
	OrganizationId string `json:"organizationId" yaml:"organizationId" toml:"organizationId"`
	EnvironmentId  string `json:"environmentId" yaml:"environmentId" toml:"environmentId"`

	BaseUrl              string `json:"baseUrl" yaml:"baseUrl" toml:"baseUrl"`
	LoginUrl             string `json:"loginUrl" yaml:"loginUrl" toml:"loginUrl"`
	HttpTimeoutInSeconds int    `json:"httpTimeoutInSeconds" yaml:"httpTimeoutInSeconds" toml:"httpTimeoutInSeconds"`

	TokenCache     string `json:"tokenCache" yaml:"tokenCache" toml:"tokenCache"`
	CacheAddr      string `json:"cacheAddr" yaml:"cacheAddr" toml:"cacheAddr"`
	CachePassword  string `json:"cachePassword" yaml:"cachePassword" toml:"cachePassword"`
	CacheKeyPrefix string `json:"cacheKeyPrefix" yaml:"cacheKeyPrefix" toml:"cacheKeyPrefix"`

	MetricsTextfile string `json:"metricsTextfile" yaml:"metricsTextfile" toml:"metricsTextfile"`

	LogLevel    string       `json:"logLevel" yaml:"logLevel" toml:"logLevel"`
	LogrusLevel logrus.Level `json:"-" yaml:"-" toml:"-"`
}

func (c *Configuration) HttpTimeout() time.Duration {
	return time.Duration(c.HttpTimeoutInSeconds) * time.Second
}
