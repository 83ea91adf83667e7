// Package config loads runtime configuration for the inventoryctl CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables INVENTORY_URL, INVENTORY_TIMEOUT and
//     INVENTORY_OUTPUT.
//  3. Optional JSON file passed with --config.
//
// Command-line flags are bound by the cli package on top of the result.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so it can be either a
// string like "10s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "timeout": "10s",
//	  "output": "yaml"
//	}
package config
