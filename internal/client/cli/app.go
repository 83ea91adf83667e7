package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmitrijs2005/inventory/internal/client/client"
	"github.com/dmitrijs2005/inventory/internal/client/config"
	"gopkg.in/yaml.v3"
)

type App struct {
	config *config.Config
	client client.Client
	out    io.Writer
}

// newClient is replaced in tests.
var newClient = func(cfg *config.Config) (client.Client, error) {
	return client.NewHTTPClient(cfg.ServerURL, cfg.Timeout)
}

// render writes v in the configured output format.
func (a *App) render(v any) error {
	switch a.config.Output {
	case config.OutputYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case config.OutputJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", a.config.Output)
	}
}
