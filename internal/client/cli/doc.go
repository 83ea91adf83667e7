// Package cli implements inventoryctl, a command-line client for the
// inventory HTTP API.
//
// Every command loads configuration (defaults, INVENTORY_* environment, an
// optional --config JSON file, then flags), calls the API through
// client.Client and renders the result as JSON or YAML on stdout.
//
// Commands: import-sample, list, get, count, categories, search, delete,
// adjust, export and smoke.
package cli
