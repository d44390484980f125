package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

func loadEnvFile() {
	loadOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			// Not fatal: in deployed environments variables come from the
			// process environment and no .env file exists.
			fmt.Fprintf(os.Stderr, "no .env file loaded: %v\n", err)
		}
	})
}

// MustGet returns the value of envVar and exits if it is not set.
// Use for keys the server cannot start without.
func MustGet(envVar string) string {
	loadEnvFile()

	value := os.Getenv(envVar)
	if value == "" {
		fmt.Fprintf(os.Stderr, "%s not set\n", envVar)
		os.Exit(1)
	}

	return value
}

// Lookup returns the value of envVar and whether it is set. Callers that
// can surface a configuration error themselves should prefer this over
// MustGet.
func Lookup(envVar string) (string, bool) {
	loadEnvFile()

	value := os.Getenv(envVar)
	return value, value != ""
}
