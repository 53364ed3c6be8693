package main

import (
	"os"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/cmd"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/app"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	ctx := app.NewContext(version, buildDate)

	rootCmd := cmd.RootCommand(ctx)
	err := rootCmd.Execute()
	// PersistentPostRunE is skipped when a command fails
	_ = ctx.Close()
	if err != nil {
		os.Exit(1)
	}
}
