package runner

import (
	"path/filepath"
	"runtime"
)

// hostOS is overridable in tests.
var hostOS = runtime.GOOS

// shellPrefixes maps a host platform to the tokens placed before a script path.
// Windows hosts go through WSL so the same bash scripts run unchanged.
var shellPrefixes = map[string][]string{
	"windows": {"wsl", "-e", "bash"},
}

var defaultShellPrefix = []string{"bash"}

// ShellCommand resolves the argv used to execute script on the goos host.
func ShellCommand(goos, script string) []string {
	prefix, ok := shellPrefixes[goos]
	if !ok {
		prefix = defaultShellPrefix
	}
	if goos == "windows" {
		// WSL bash expects forward slashes.
		script = filepath.ToSlash(script)
	}
	argv := make([]string, 0, len(prefix)+1)
	argv = append(argv, prefix...)
	return append(argv, script)
}
