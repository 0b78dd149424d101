package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile, then environment, then flags.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Engine  EngineConfig  `json:"engine"`
	Agent   AgentConfig   `json:"agent"`
	Tools   ToolsConfig   `json:"tools"`
	Session SessionConfig `json:"session"`
	Log     LogConfig     `json:"log"`
}

// EngineConfig is passed through to the LLM client factory untouched by the loop.
type EngineConfig struct {
	Producer       string  `json:"producer"` // openai, qwen, bigmodel, local, gemini, anthropic
	Model          string  `json:"model"`
	APIKey         string  `json:"api_key"`
	APIBase        string  `json:"api_base"`
	EnableThinking bool    `json:"enable_thinking"`
	MaxTokens      int     `json:"max_tokens"`        // Default: 4096
	Temperature    float64 `json:"temperature"`       // Default: 0.7
	RequestTimeout int     `json:"request_timeout_s"` // Default: 120
}

type AgentConfig struct {
	MaxIterations    int `json:"max_iterations"`      // Default: 200
	MaxRetries       int `json:"max_retries"`         // Default: 3
	RetryBaseDelayMs int `json:"retry_base_delay_ms"` // Default: 1000
	MaxTurnDuration  int `json:"max_turn_duration_s"` // Default: 900
}

type ToolsConfig struct {
	// File Operations
	MaxFileSize       int64 `json:"max_file_size"`        // Default: 20 * 1024 * 1024 (20MB)
	ReadDefaultLimit  int   `json:"read_default_limit"`   // Default: 2000 lines
	ReadMaxLineLength int   `json:"read_max_line_length"` // Default: 2000 characters

	// Command Execution
	MaxCommandOutputSize    int64 `json:"max_command_output_size"`    // Default: 1MB
	ShellDefaultTimeoutMs   int   `json:"shell_default_timeout_ms"`   // Default: 300000 (5 minutes)
	ShellMaxTimeoutMs       int   `json:"shell_max_timeout_ms"`       // Default: 600000 (10 minutes)
	ShellGracefulShutdownMs int   `json:"shell_graceful_shutdown_ms"` // Default: 2000

	// Search
	GlobMaxResults int `json:"glob_max_results"` // Default: 100
	GrepMaxResults int `json:"grep_max_results"` // Default: 100
	MaxLineLength  int `json:"max_line_length"`  // Default: 2000

	// Web
	WebFetchTimeout  int   `json:"webfetch_timeout_s"` // Default: 30
	WebFetchMaxChars int   `json:"webfetch_max_chars"` // Default: 5000
	WebFetchMaxBytes int64 `json:"webfetch_max_bytes"` // Default: 5MB
}

type SessionConfig struct {
	Backend string `json:"backend"` // file or sqlite
	Dir     string `json:"dir"`     // relative paths are resolved against the working directory
}

type LogConfig struct {
	Level  string `json:"level"`
	File   string `json:"file"` // empty means ~/.config/codeagent/codeagent.log
	Pretty bool   `json:"pretty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Producer:       "openai",
			Model:          "gpt-4o-mini",
			MaxTokens:      4096,
			Temperature:    0.7,
			RequestTimeout: 120,
		},
		Agent: AgentConfig{
			MaxIterations:    200,
			MaxRetries:       3,
			RetryBaseDelayMs: 1000,
			MaxTurnDuration:  900,
		},
		Tools: ToolsConfig{
			MaxFileSize:             20 * 1024 * 1024,
			ReadDefaultLimit:        2000,
			ReadMaxLineLength:       2000,
			MaxCommandOutputSize:    1024 * 1024,
			ShellDefaultTimeoutMs:   300000,
			ShellMaxTimeoutMs:       600000,
			ShellGracefulShutdownMs: 2000,
			GlobMaxResults:          100,
			GrepMaxResults:          100,
			MaxLineLength:           2000,
			WebFetchTimeout:         30,
			WebFetchMaxChars:        5000,
			WebFetchMaxBytes:        5 * 1024 * 1024,
		},
		Session: SessionConfig{
			Backend: "file",
			Dir:     ".sessions",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
