package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/devicelab-dev/element-resolver/pkg/core"
)

const envHome = "RESOLVER_HOME"

// configNames are the file names LoadFromDir and FindConfigDir accept.
var configNames = []string{"resolver.yaml", "resolver.yml"}

var (
	homeOnce sync.Once
	homeDir  string
)

// GetHome returns the resolver home directory, which holds the default
// resolver.yaml and the fingerprint store. It is $RESOLVER_HOME when set,
// <home> when the binary lives in <home>/bin, else the working directory.
// The result is cached for the process.
func GetHome() string {
	homeOnce.Do(func() {
		homeDir = findHome()
	})
	return homeDir
}

// ResetHome drops the cached home directory.
func ResetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}

// FindConfigDir returns the first of the working directory and the home
// directory that contains a config file, or "" when neither does.
func FindConfigDir() string {
	for _, dir := range []string{".", GetHome()} {
		for _, name := range configNames {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir
			}
		}
	}
	return ""
}

// FingerprintDir is the store for named fingerprints.
func FingerprintDir() string {
	return filepath.Join(GetHome(), "fingerprints")
}

// FingerprintPath resolves ref to a fingerprint file. Anything that looks
// like a path (exists, has a separator or an extension) is returned as is;
// a bare name maps to <home>/fingerprints/<name>.yaml.
func FingerprintPath(ref string) string {
	if _, err := os.Stat(ref); err == nil {
		return ref
	}
	if strings.ContainsAny(ref, `/\`) || filepath.Ext(ref) != "" {
		return ref
	}
	return filepath.Join(FingerprintDir(), ref+".yaml")
}

// NewFingerprintPath returns the store path for name, creating the store
// when missing. Names must be bare: no separators and not "." or "..".
func NewFingerprintPath(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", core.ErrInvalidFingerprint.WithMessage(fmt.Sprintf("invalid fingerprint name %q", name))
	}
	dir := FingerprintDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create fingerprint store: %w", err)
	}
	return filepath.Join(dir, name+".yaml"), nil
}

func findHome() string {
	if env := os.Getenv(envHome); env != "" {
		return env
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		if bin := filepath.Dir(exe); filepath.Base(bin) == "bin" {
			return filepath.Dir(bin)
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}
