package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/inventory/internal/client/cli"
)

// buildVersion is set with -ldflags "-X main.buildVersion=...".
var buildVersion = "N/A"

func main() {
	if err := cli.NewRootCommand(buildVersion).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
