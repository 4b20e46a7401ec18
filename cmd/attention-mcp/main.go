package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/attention-mcp/internal/logger"
	"github.com/ironsheep/attention-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("attention-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("attention-mcp - MCP server for rule-based visual attention maps")
			fmt.Println()
			fmt.Println("Usage: attention-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  ATTENTION_MCP_LOG_LEVEL=debug        Log level (debug, info, warn, error)")
			fmt.Printf("  ATTENTION_MCP_MAX_DIMENSION=%d      Longest image side before features run (0 disables)\n", server.DefaultMaxDimension)
			fmt.Println("  ATTENTION_MCP_CONCURRENT=true        Evaluate fused features in parallel")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	settings, err := loadSettings(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "attention-mcp: %v\n", err)
		os.Exit(2)
	}

	// Logs go to stderr; stdout is for MCP protocol
	log := logger.NewConsole(settings.LogLevel)
	log.Info("main", "serving on stdio", map[string]interface{}{"version": Version})
	log.Debug("main", "build", map[string]interface{}{
		"build_time":    BuildTime,
		"commit":        GitCommit,
		"max_dimension": settings.Server.MaxDimension,
		"concurrent":    settings.Server.Concurrent,
	})

	srv := server.New(settings.Server, log)
	if err := srv.Run(); err != nil {
		log.Error("main", fmt.Errorf("server error: %w", err), nil)
		os.Exit(1)
	}
}
