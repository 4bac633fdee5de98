package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// CSMVersion is a parsed CSM semantic version of the form
// <major>.<minor>.<patch>[-<label>][+<build>] where label and build are
// optional.
type CSMVersion struct {
	Major int
	Minor int
	Patch int
	Label string
	Build string
}

var csmVersionRE = regexp.MustCompile(
	`^(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z\-.]+))?(?:\+([0-9A-Za-z\-.]+))?$`,
)

// ParseCSMVersion parses the configured CSM version string.
func ParseCSMVersion(version string) (CSMVersion, error) {
	if version == "" {
		return CSMVersion{}, ErrNoCSMVersion
	}

	m := csmVersionRE.FindStringSubmatch(version)
	if m == nil {
		return CSMVersion{}, fmt.Errorf("%w: '%s'", ErrInvalidCSMVersion, version)
	}

	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])

	return CSMVersion{
		Major: major,
		Minor: minor,
		Patch: patch,
		Label: m[4],
		Build: m[5],
	}, nil
}

// MajorMinor returns the 'major.minor' form used by the system_config seed
// file.
func (v CSMVersion) MajorMinor() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func (v CSMVersion) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Label != "" {
		s += "-" + v.Label
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}
