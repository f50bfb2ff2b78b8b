package version

import (
	"fmt"
	"strings"
	"sync"
)

// validCharacters is a list of characters valid in the appBuild string
const validCharacters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

const (
	appMajor uint = 0
	appMinor uint = 3
	appPatch uint = 0
)

// appBuild is defined as a variable so it can be overridden during the build
// process with '-ldflags "-X github.com/contractchain/contractd/version.appBuild=foo"' if needed.
// It MUST only contain characters from validCharacters.
var appBuild string

var (
	versionOnce sync.Once
	version     string
)

// Version returns the application version as a properly formed string:
// major.minor.patch, followed by -build when build metadata is set.
func Version() string {
	versionOnce.Do(func() {
		version = formatVersion(appMajor, appMinor, appPatch, appBuild)
	})
	return version
}

func formatVersion(major, minor, patch uint, build string) string {
	formatted := fmt.Sprintf("%d.%d.%d", major, minor, patch)

	// The build metadata is dropped if it contains invalid characters.
	if build = checkAppBuild(build); build != "" {
		formatted = fmt.Sprintf("%s-%s", formatted, build)
	}
	return formatted
}

// checkAppBuild returns the passed string unless it contains any characters not in validCharacters
// If any invalid characters are encountered - an empty string is returned
func checkAppBuild(str string) string {
	for _, r := range str {
		if !strings.ContainsRune(validCharacters, r) {
			return ""
		}
	}
	return str
}
