package utils

import (
	"os"
	"strconv"
	"strings"
)

// SafeEnv returns the environment variable value for key, or fallback if empty.
func SafeEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// SafeEnvBool parses key as a boolean, returning fallback when unset or unparsable.
func SafeEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(SafeEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// SafeEnvInt parses key as an integer, returning fallback when unset or unparsable.
func SafeEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(SafeEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
