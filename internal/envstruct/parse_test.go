package envstruct_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/gymcrm/internal/envstruct"
)

type serverConfig struct {
	Addr       string        `env:"ADDR" envDefault:"localhost:8081"`
	CacheTTL   time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	MaxLogs    int           `env:"MAX_LOGS" envDefault:"30"`
	Verbose    bool          `env:"VERBOSE" envDefault:"false"`
	NotFromEnv string
}

func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestPopulate(t *testing.T) {
	tests := []struct {
		name      string
		v         any
		lookupEnv func(string) (string, bool)
		want      any
		wantErr   error
	}{
		{
			name:      "nil",
			v:         nil,
			lookupEnv: lookupFrom(nil),
			wantErr:   envstruct.ErrInvalidValue,
		},
		{
			name:      "not pointer",
			v:         struct{}{},
			lookupEnv: lookupFrom(nil),
			wantErr:   envstruct.ErrInvalidValue,
		},
		{
			name:      "pointer to non-struct",
			v:         new(string),
			lookupEnv: lookupFrom(nil),
			wantErr:   envstruct.ErrInvalidValue,
		},
		{
			name: "missing env without default",
			v: &struct { //nolint:exhaustruct // populated later
				MongoURI string `env:"MONGO_URI"`
			}{},
			lookupEnv: lookupFrom(nil),
			wantErr:   envstruct.ErrEnvNotSet,
		},
		{
			name:      "defaults",
			v:         &serverConfig{}, //nolint:exhaustruct // populated later
			lookupEnv: lookupFrom(nil),
			want: &serverConfig{ //nolint:exhaustruct // NotFromEnv stays empty
				Addr:     "localhost:8081",
				CacheTTL: 5 * time.Minute,
				MaxLogs:  30,
				Verbose:  false,
			},
		},
		{
			name: "environment overrides defaults",
			v:    &serverConfig{}, //nolint:exhaustruct // populated later
			lookupEnv: lookupFrom(map[string]string{
				"ADDR":      "localhost:0",
				"CACHE_TTL": "90s",
				"MAX_LOGS":  "50",
				"VERBOSE":   "true",
			}),
			want: &serverConfig{ //nolint:exhaustruct // NotFromEnv stays empty
				Addr:     "localhost:0",
				CacheTTL: 90 * time.Second,
				MaxLogs:  50,
				Verbose:  true,
			},
		},
		{
			name:      "invalid duration",
			v:         &serverConfig{}, //nolint:exhaustruct // populated later
			lookupEnv: lookupFrom(map[string]string{"CACHE_TTL": "five minutes"}),
			wantErr:   envstruct.ErrParse,
		},
		{
			name:      "invalid int",
			v:         &serverConfig{}, //nolint:exhaustruct // populated later
			lookupEnv: lookupFrom(map[string]string{"MAX_LOGS": "many"}),
			wantErr:   envstruct.ErrParse,
		},
		{
			name: "unsupported type",
			v: &struct { //nolint:exhaustruct // populated later
				Ratio float64 `env:"RATIO" envDefault:"0.5"`
			}{},
			lookupEnv: lookupFrom(nil),
			wantErr:   envstruct.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := envstruct.Populate(tt.v, tt.lookupEnv)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Populate() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Populate() unexpected error = %v", err)
			}
			if diff := cmp.Diff(tt.want, tt.v); diff != "" {
				t.Errorf("Populate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWithDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("ADDR=localhost:9000\nMAX_LOGS=7\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	lookupEnv, err := envstruct.WithDotenv(path, lookupFrom(map[string]string{"MAX_LOGS": "12"}))
	if err != nil {
		t.Fatalf("WithDotenv() error = %v", err)
	}

	var cfg serverConfig
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		t.Fatalf("Populate() error = %v", err)
	}
	if cfg.Addr != "localhost:9000" {
		t.Errorf("Addr = %q, want value from dotenv file", cfg.Addr)
	}
	if cfg.MaxLogs != 12 {
		t.Errorf("MaxLogs = %d, want the real environment to win over the dotenv file", cfg.MaxLogs)
	}

	if _, err = envstruct.WithDotenv(filepath.Join(dir, "missing.env"), lookupFrom(nil)); err != nil {
		t.Errorf("WithDotenv() with missing file error = %v, want nil", err)
	}
}
