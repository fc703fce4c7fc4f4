package admin

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

var Regions = []string{
	"us-east-1",
	"us-west-2",
	"ca-central-1",
	"eu-west-1",
	"eu-west-2",
	"ap-southeast-1",
	"ap-southeast-2",
}

// Scope identifies where destinations live.
type Scope struct {
	OrganizationId string
	EnvironmentId  string
	Region         string
}

func IsValidRegion(region string) bool {
	for _, r := range Regions {
		if r == region {
			return true
		}
	}
	return false
}

func (s Scope) Validate() error {
	if s.OrganizationId == "" {
		return errors.New("Organization id should be provided with --organization-id or MQ_ORG_ID.")
	}
	if s.EnvironmentId == "" {
		return errors.New("Environment id should be provided with --environment-id or MQ_ENV_ID.")
	}
	if !IsValidRegion(s.Region) {
		return errors.Errorf("Unknown region[%s], valid regions are: %s.", s.Region, strings.Join(Regions, ", "))
	}
	return nil
}

func (s Scope) path(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		escaped = append(escaped, url.PathEscape(segment))
	}

	return "/organizations/" + url.PathEscape(s.OrganizationId) +
		"/environments/" + url.PathEscape(s.EnvironmentId) +
		"/regions/" + url.PathEscape(s.Region) +
		"/" + strings.Join(escaped, "/")
}
