package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ironsheep/attention-mcp/internal/logger"
	"github.com/ironsheep/attention-mcp/internal/server"
)

// Environment variables read at startup.
const (
	envLogLevel     = "ATTENTION_MCP_LOG_LEVEL"
	envMaxDimension = "ATTENTION_MCP_MAX_DIMENSION"
	envConcurrent   = "ATTENTION_MCP_CONCURRENT"
)

type settings struct {
	LogLevel zerolog.Level
	Server   server.Config
}

// loadSettings builds the startup settings from getenv. Unset variables keep
// their defaults; malformed ones are an error.
func loadSettings(getenv func(string) string) (settings, error) {
	s := settings{Server: server.DefaultConfig()}

	level, err := logger.ParseLevel(getenv(envLogLevel))
	if err != nil {
		return s, fmt.Errorf("%s: %w", envLogLevel, err)
	}
	s.LogLevel = level

	if v := strings.TrimSpace(getenv(envMaxDimension)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return s, fmt.Errorf("%s: want a non-negative integer, got %q", envMaxDimension, v)
		}
		s.Server.MaxDimension = n
	}

	if v := strings.TrimSpace(getenv(envConcurrent)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, fmt.Errorf("%s: %w", envConcurrent, err)
		}
		s.Server.Concurrent = b
	}

	return s, nil
}
