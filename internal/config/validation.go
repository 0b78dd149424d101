package config

import (
	"fmt"
	"strings"
)

var knownProducers = map[string]bool{
	"openai":    true,
	"qwen":      true,
	"bigmodel":  true,
	"local":     true,
	"gemini":    true,
	"anthropic": true,
}

// Validate checks config values for correctness.
// All violations are reported together.
func (c *Config) Validate() error {
	var errs []string

	// Engine
	if !knownProducers[strings.ToLower(c.Engine.Producer)] {
		errs = append(errs, fmt.Sprintf("engine.producer %q is not supported", c.Engine.Producer))
	}
	if c.Engine.Model == "" {
		errs = append(errs, "engine.model is required")
	}
	if c.Engine.MaxTokens < 1 {
		errs = append(errs, "engine.max_tokens must be >= 1")
	}
	if c.Engine.Temperature < 0 || c.Engine.Temperature > 2 {
		errs = append(errs, "engine.temperature must be between 0 and 2")
	}
	if c.Engine.RequestTimeout < 1 {
		errs = append(errs, "engine.request_timeout_s must be >= 1")
	}

	// Agent
	if c.Agent.MaxIterations < 1 {
		errs = append(errs, "agent.max_iterations must be >= 1")
	}
	if c.Agent.MaxRetries < 1 {
		errs = append(errs, "agent.max_retries must be >= 1")
	}
	if c.Agent.RetryBaseDelayMs < 0 {
		errs = append(errs, "agent.retry_base_delay_ms must be >= 0")
	}
	if c.Agent.MaxTurnDuration < 1 {
		errs = append(errs, "agent.max_turn_duration_s must be >= 1")
	}

	// Tools
	if c.Tools.MaxFileSize < 1 {
		errs = append(errs, "tools.max_file_size must be >= 1")
	}
	if c.Tools.ReadDefaultLimit < 1 {
		errs = append(errs, "tools.read_default_limit must be >= 1")
	}
	if c.Tools.ReadMaxLineLength < 1 {
		errs = append(errs, "tools.read_max_line_length must be >= 1")
	}
	if c.Tools.MaxCommandOutputSize < 1 {
		errs = append(errs, "tools.max_command_output_size must be >= 1")
	}
	if c.Tools.ShellDefaultTimeoutMs < 1 {
		errs = append(errs, "tools.shell_default_timeout_ms must be >= 1")
	}
	if c.Tools.ShellGracefulShutdownMs < 0 {
		errs = append(errs, "tools.shell_graceful_shutdown_ms must be >= 0")
	}
	if c.Tools.GlobMaxResults < 1 {
		errs = append(errs, "tools.glob_max_results must be >= 1")
	}
	if c.Tools.GrepMaxResults < 1 {
		errs = append(errs, "tools.grep_max_results must be >= 1")
	}
	if c.Tools.MaxLineLength < 1 {
		errs = append(errs, "tools.max_line_length must be >= 1")
	}
	if c.Tools.WebFetchTimeout < 1 {
		errs = append(errs, "tools.webfetch_timeout_s must be >= 1")
	}
	if c.Tools.WebFetchMaxChars < 1 {
		errs = append(errs, "tools.webfetch_max_chars must be >= 1")
	}
	if c.Tools.WebFetchMaxBytes < 1 {
		errs = append(errs, "tools.webfetch_max_bytes must be >= 1")
	}

	// Semantic validation: Default <= Max constraints
	if c.Tools.ShellDefaultTimeoutMs > c.Tools.ShellMaxTimeoutMs {
		errs = append(errs, "tools.shell_default_timeout_ms must be <= tools.shell_max_timeout_ms")
	}

	// Session
	switch c.Session.Backend {
	case "file", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("session.backend %q must be file or sqlite", c.Session.Backend))
	}
	if c.Session.Dir == "" {
		errs = append(errs, "session.dir is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
