package service

import (
	"fmt"
	"regexp"
	"strconv"

	"fsvp/internal/model"
)

var versionPattern = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)$`)

// nextMinorVersion increments the minor component of a semantic version
// string, keeping the major and patch as they are. Malformed input resets to
// the initial version rather than failing the update.
func nextMinorVersion(current string) string {
	m := versionPattern.FindStringSubmatch(current)
	if m == nil {
		return model.InitialVersion
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("v%d.%d.%s", major, minor+1, m[3])
}
