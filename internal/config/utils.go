package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup parses the trimmed value of key with parse. Unset, blank or
// unparsable values yield fallback.
func lookup[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

// getEnv keeps an explicitly empty value so DSNs and passwords can be cleared.
func getEnv(key, fallback string) string {
	if raw, ok := os.LookupEnv(key); ok {
		return raw
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	return lookup(key, fallback, strconv.Atoi)
}

func getEnvAsBool(key string, fallback bool) bool {
	return lookup(key, fallback, strconv.ParseBool)
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	return lookup(key, fallback, time.ParseDuration)
}

func getEnvAsStringSlice(key string, fallback []string) []string {
	return lookup(key, fallback, func(raw string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil, strconv.ErrSyntax
		}
		return out, nil
	})
}
