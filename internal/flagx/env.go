package flagx

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvString overwrites *dst with the value of the environment variable name
// when it is set and non-empty.
func EnvString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

// EnvInt overwrites *dst with an integer environment variable.
func EnvInt(dst *int, name string) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

// EnvBool overwrites *dst with a boolean environment variable
// (anything strconv.ParseBool accepts).
func EnvBool(dst *bool, name string) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = b
	return nil
}

// EnvDuration overwrites *dst from an environment variable holding either a
// Go duration ("2s") or a plain integer interpreted in the given unit.
func EnvDuration(dst *time.Duration, name string, unit time.Duration) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		*dst = time.Duration(n) * unit
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
