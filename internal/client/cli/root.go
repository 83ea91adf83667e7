package cli

import (
	"time"

	"github.com/dmitrijs2005/inventory/internal/client/config"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the inventoryctl command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &App{}

	var (
		configPath string
		server     string
		output     string
		timeout    time.Duration
	)

	root := &cobra.Command{
		Use:          "inventoryctl",
		Short:        "Command-line client for the inventory API",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("server") {
				cfg.ServerURL = server
			}
			if flags.Changed("output") {
				cfg.Output = output
			}
			if flags.Changed("timeout") {
				cfg.Timeout = timeout
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			c, err := newClient(cfg)
			if err != nil {
				return err
			}

			a.config = cfg
			a.client = c
			a.out = cmd.OutOrStdout()
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "path to JSON config file")
	pf.StringVarP(&server, "server", "s", "", "base URL of the inventory server")
	pf.StringVarP(&output, "output", "o", "", "output format: json or yaml")
	pf.DurationVar(&timeout, "timeout", 0, "request timeout, e.g. 5s")

	root.AddCommand(
		a.importSampleCmd(),
		a.listCmd(),
		a.getCmd(),
		a.countCmd(),
		a.categoriesCmd(),
		a.searchCmd(),
		a.deleteCmd(),
		a.adjustCmd(),
		a.exportCmd(),
		a.smokeCmd(),
	)

	return root
}
