package tempfile

import (
	"os"
	"runtime"
	"sync"
)

var (
	diskPreferredDir string
	dirDiscoveryOnce sync.Once
)

// GetTempDir returns the directory temp files are created in.
// A non-empty dir is returned unchanged; the caller asked for it explicitly.
// Otherwise the OS temp directory is used, or, with preferDiskBacked, a
// directory that is traditionally disk backed rather than tmpfs when one exists.
func GetTempDir(dir string, preferDiskBacked bool) string {
	if dir != "" {
		return dir
	}
	if !preferDiskBacked {
		return os.TempDir()
	}
	dirDiscoveryOnce.Do(func() {
		diskPreferredDir = findDiskPreferredDir()
	})
	return diskPreferredDir
}

func findDiskPreferredDir() string {
	for _, candidate := range diskPreferredCandidates() {
		if isDirectory(candidate) {
			return candidate
		}
	}
	return os.TempDir()
}

// diskPreferredCandidates returns directories more likely to be disk backed
// than the OS default. On Unix-like systems /tmp may be tmpfs while /var/tmp
// traditionally is not.
func diskPreferredCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/var/tmp", "/private/var/tmp"}
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris":
		return []string{"/var/tmp"}
	default:
		return nil
	}
}

func isDirectory(dir string) bool {
	stat, err := os.Stat(dir)
	return err == nil && stat.IsDir()
}
