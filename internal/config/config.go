package config

import (
	"os"
	"strconv"
	"strings"
)

// Get returns the environment value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetBool parses key as a boolean; unparsable values yield fallback.
func GetBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(Get(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
