package envstruct

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// WithDotenv returns a lookup function that prefers lookupEnv and falls back to the variables in the dotenv file
// at path. A missing file is not an error so that production deployments don't need one.
func WithDotenv(path string, lookupEnv func(string) (string, bool)) (func(string) (string, bool), error) {
	if path == "" {
		return lookupEnv, nil
	}
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return lookupEnv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dotenv %s: %w", path, err)
	}
	return func(key string) (string, bool) {
		if val, ok := lookupEnv(key); ok {
			return val, true
		}
		val, ok := vars[key]
		return val, ok
	}, nil
}
