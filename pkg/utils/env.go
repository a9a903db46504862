// Package utils holds small helpers shared across the service.
package utils

import (
	"os"
	"strconv"
)

// Env returns the value of an environment variable, or def when it is unset
// or empty.
func Env(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// EnvInt returns an environment variable parsed as a positive integer. Unset,
// unparseable, zero and negative values all fall back to def: the callers are
// sizing pools and timeouts, where a non-positive value is never meaningful.
func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
