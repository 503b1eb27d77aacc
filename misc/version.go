// Package misc keeps build time program identity.
package misc

// Set by linker: -ldflags "-X vsdxc/misc.version=... -X vsdxc/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "vsdxc"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
