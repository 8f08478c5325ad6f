package props

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvSource reads properties from the process environment. A dotted
// property key maps onto the conventional environment spelling: dots
// become underscores and the name is uppercased, so "server.port" reads
// SERVER_PORT. The exact key is tried first.
type EnvSource struct{}

// Get returns the environment value for the key.
func (EnvSource) Get(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	return os.LookupEnv(envName(key))
}

func envName(key string) string {
	mapped := strings.NewReplacer(".", "_", "-", "_", "[", "_", "]", "").Replace(key)
	return strings.ToUpper(mapped)
}

// LoadDotenv parses dotenv files into a property source without touching
// the process environment. With no arguments ".env" is read; a missing
// file is an error.
func LoadDotenv(paths ...string) (MapSource, error) {
	values, err := godotenv.Read(paths...)
	if err != nil {
		return nil, err
	}
	return MapSource(values), nil
}
