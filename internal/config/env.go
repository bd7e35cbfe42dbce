package config

import (
	"os"
	"strings"
	"sync"
)

// The compile-time environment is snapshotted exactly once per process so
// that every Env / EnvExists operator in a single compilation sees the same
// values. Project-file overrides must be registered before the first read.

var (
	envOnce      sync.Once
	envSnapshot  map[string]string
	envOverrides = map[string]string{}
	envMu        sync.Mutex
)

// SetEnvOverride registers a compile-time environment override from the
// project file. Calling it after the snapshot has been taken has no effect.
func SetEnvOverride(key, value string) {
	envMu.Lock()
	defer envMu.Unlock()
	envOverrides[key] = value
}

// Env returns the snapshotted value of a compile-time environment variable.
func Env(key string) (string, bool) {
	snapshotEnv()
	v, ok := envSnapshot[key]
	return v, ok
}

func snapshotEnv() {
	envOnce.Do(func() {
		envSnapshot = make(map[string]string)
		for _, kv := range os.Environ() {
			if i := strings.IndexByte(kv, '='); i > 0 {
				envSnapshot[kv[:i]] = kv[i+1:]
			}
		}
		envMu.Lock()
		for k, v := range envOverrides {
			envSnapshot[k] = v
		}
		envMu.Unlock()
	})
}

// ResetEnvForTesting discards the snapshot so tests can exercise overrides.
func ResetEnvForTesting() {
	envOnce = sync.Once{}
	envSnapshot = nil
	envMu.Lock()
	envOverrides = map[string]string{}
	envMu.Unlock()
}
