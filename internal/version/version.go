// Package version reports the build version of the module and checks the
// versions of API and configuration formats it understands.
package version

import (
	"github.com/Masterminds/semver/v3"
)

// Version is the current version of the module.
const Version = "0.3.0"

const (
	// APIConstraint accepts the hypermedia API versions this client speaks.
	APIConstraint = "1.x"

	// ConfigFormatConstraint accepts the config file formats Load understands.
	ConfigFormatConstraint = "~0.1"
)

var (
	apiConstraint    *semver.Constraints
	configConstraint *semver.Constraints
)

func init() {
	var err error
	apiConstraint, err = semver.NewConstraint(APIConstraint)
	if err != nil {
		panic(err)
	}
	configConstraint, err = semver.NewConstraint(ConfigFormatConstraint)
	if err != nil {
		panic(err)
	}
}

// IsAPIVersionSupported reports whether the API version v, such as "1",
// can be sent in the version header. Invalid versions are not supported.
func IsAPIVersionSupported(v string) bool {
	return check(apiConstraint, v)
}

// IsConfigFormatSupported reports whether a config file declaring format
// version v can be loaded.
func IsConfigFormatSupported(v string) bool {
	return check(configConstraint, v)
}

func check(c *semver.Constraints, v string) bool {
	sv, err := semver.NewVersion(v)
	if err != nil {
		return false
	}
	return c.Check(sv)
}
