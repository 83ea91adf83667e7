package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:8080", "-r", ":6000", "-t", "postgres", "-m", "mongodb://m", "-n", "inv",
			"-d", "db", "-l", "zap", "-v", "debug", "-i", "30",
			"-u", "user", "-p", "password", "-b", "bucket", "-s", "us-west-1", "-e", "http://endpoint",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP:    "127.0.0.1:8080",
				EndpointAddrGRPC:    ":6000",
				StorageType:         "postgres",
				MongoURI:            "mongodb://m",
				MongoDatabase:       "inv",
				DatabaseDSN:         "db",
				LogBackend:          "zap",
				LogLevel:            "debug",
				HealthCheckInterval: 30 * time.Second,
				S3RootUser:          "user",
				S3RootPassword:      "password",
				S3Bucket:            "bucket",
				S3Region:            "us-west-1",
				S3BaseEndpoint:      "http://endpoint",
			}},
		{name: "unrelated flags are skipped", args: []string{"cmd", "-c", "cfg.json", "-t=memory", "-x", "1"},
			expected: &Config{StorageType: "memory"}},
		{name: "bad interval", args: []string{"cmd", "-i", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
