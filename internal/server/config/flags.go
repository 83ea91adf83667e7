package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/inventory/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-r string   gRPC bind address (e.g., ":50051")
//	-t string   storage type: mongo, postgres or memory
//	-m string   MongoDB URI
//	-n string   MongoDB database name
//	-d string   PostgreSQL DSN
//	-l string   log backend: slog or zap
//	-v string   log level
//	-i int      storage health check interval, seconds
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-s string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-r", "-t", "-m", "-n", "-d", "-l", "-v", "-i", "-u", "-p", "-b", "-s", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port of the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "r", config.EndpointAddrGRPC, "address and port of the gRPC health endpoint")
	fs.StringVar(&config.StorageType, "t", config.StorageType, "storage type (mongo, postgres, memory)")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "MongoDB database")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog, zap)")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	healthCheckInterval := fs.Int("i", int(config.HealthCheckInterval.Seconds()), "storage health check interval (in seconds)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "s", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.HealthCheckInterval = time.Duration(*healthCheckInterval) * time.Second
}
