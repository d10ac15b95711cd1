// Package envutil reads bounded settings from environment variables.
package envutil

import (
	"os"
	"strconv"

	"github.com/nrdb/cardlint/pkg/logger"
)

// GetIntFromEnv returns the integer value of the environment variable name.
// An unset, unparsable or out-of-range value yields defaultValue. log may be nil.
func GetIntFromEnv(name string, defaultValue, minValue, maxValue int, log *logger.Logger) int {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		if log != nil {
			log.Printf("Invalid %s value %q, using default %d", name, raw, defaultValue)
		}
		return defaultValue
	}
	if value < minValue || value > maxValue {
		if log != nil {
			log.Printf("%s=%d outside [%d, %d], using default %d", name, value, minValue, maxValue, defaultValue)
		}
		return defaultValue
	}

	if log != nil {
		log.Printf("Using %s=%d", name, value)
	}
	return value
}
