package devflake

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Context carries the process level configuration, read once from the environment
type Context struct {
	context.Context

	// DescriptorFile is an explicit path, skipping the upward search when set
	DescriptorFile string

	// System restricts single-platform commands, defaults to the host system
	System string

	Debug       bool
	Offline     bool
	GitHubToken string
	Timeout     time.Duration

	PWD string
}

func NewContext(parent context.Context, workspaceDir string) (*Context, error) {
	ctx := Context{
		Context: parent,
		PWD:     workspaceDir,
		Timeout: 30 * time.Second,
	}

	if ctx.PWD == "" {
		dir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to read current working directory: %w", err)
		}
		ctx.PWD = dir
	}

	if v, ok := os.LookupEnv("DEVFLAKE_FILE"); ok {
		ctx.DescriptorFile = strings.TrimSpace(v)
	}

	if v, ok := os.LookupEnv("DEVFLAKE_SYSTEM"); ok {
		ctx.System = strings.TrimSpace(v)
	}

	if v, ok := os.LookupEnv("DEVFLAKE_DEBUG"); ok {
		ctx.Debug = isTruthy(v)
	}

	if v, ok := os.LookupEnv("DEVFLAKE_OFFLINE"); ok {
		ctx.Offline = isTruthy(v)
	}

	if v, ok := os.LookupEnv("GITHUB_TOKEN"); ok {
		ctx.GitHubToken = strings.TrimSpace(v)
	}

	if v, ok := os.LookupEnv("DEVFLAKE_TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid DEVFLAKE_TIMEOUT (%s): %w", v, err)
		}
		ctx.Timeout = d
	}

	return &ctx, nil
}

func isTruthy(v string) bool {
	v = strings.TrimSpace(v)
	return v == "1" || strings.EqualFold(v, "true")
}
