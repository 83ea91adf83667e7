package config

import (
	"os"
	"strings"
)

// parseEnv overlays the values of the process environment.
//
// PORT is the conventional platform variable and yields ":PORT"; HTTP_ADDR,
// when also set, wins over it.
func parseEnv(config *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.EndpointAddrHTTP = ":" + port
	}

	vars := []struct {
		name string
		dst  *string
	}{
		{"HTTP_ADDR", &config.EndpointAddrHTTP},
		{"GRPC_ADDR", &config.EndpointAddrGRPC},
		{"STORAGE_TYPE", &config.StorageType},
		{"MONGODB_URI", &config.MongoURI},
		{"MONGODB_DATABASE", &config.MongoDatabase},
		{"DATABASE_DSN", &config.DatabaseDSN},
		{"LOG_BACKEND", &config.LogBackend},
		{"LOG_LEVEL", &config.LogLevel},
		{"S3_ROOT_USER", &config.S3RootUser},
		{"S3_ROOT_PASSWORD", &config.S3RootPassword},
		{"S3_BUCKET", &config.S3Bucket},
		{"S3_REGION", &config.S3Region},
		{"S3_BASE_ENDPOINT", &config.S3BaseEndpoint},
	}
	for _, v := range vars {
		if val, ok := os.LookupEnv(v.name); ok && val != "" {
			*v.dst = val
		}
	}
}
