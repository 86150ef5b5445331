package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is prepended to every environment variable the service reads.
const EnvPrefix = "MANGA_"

// EnvString returns the trimmed value of key, reporting whether it was set.
func EnvString(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s: invalid integer %q: %w", key, raw, err)
	}
	return n, true, nil
}

// EnvBool parses key with strconv.ParseBool.
func EnvBool(key string) (bool, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, true, fmt.Errorf("%s: invalid boolean %q: %w", key, raw, err)
	}
	return b, true, nil
}

// EnvDuration parses key with time.ParseDuration.
func EnvDuration(key string) (time.Duration, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	return d, true, nil
}

// ApplyEnv overlays MANGA_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	stringVars := map[string]*string{
		"BASE_URL":      &c.BaseURL,
		"LISTEN_ADDR":   &c.ListenAddr,
		"USER_AGENT":    &c.UserAgent,
		"CACHE_BACKEND": &c.CacheBackend,
		"DATABASE_PATH": &c.DatabasePath,
		"FIELDS_FILE":   &c.FieldsFile,
	}
	for key, dst := range stringVars {
		if v, ok := EnvString(EnvPrefix + key); ok {
			*dst = v
		}
	}

	boolVars := map[string]*bool{
		"RESPECT_ROBOTS":      &c.RespectRobotsTxt,
		"CACHE_ENABLED":       &c.CacheEnabled,
		"WRAP_FIELD_RESPONSE": &c.WrapFieldResponse,
		"METRICS_ENABLED":     &c.MetricsEnabled,
		"VERBOSE":             &c.Verbose,
	}
	for key, dst := range boolVars {
		v, ok, err := EnvBool(EnvPrefix + key)
		if err != nil {
			return err
		}
		if ok {
			*dst = v
		}
	}

	if v, ok, err := EnvInt(EnvPrefix + "CACHE_SIZE"); err != nil {
		return err
	} else if ok {
		c.CacheSize = v
	}

	if v, ok, err := EnvDuration(EnvPrefix + "TIMEOUT"); err != nil {
		return err
	} else if ok {
		c.Timeout = v
	}

	return nil
}
