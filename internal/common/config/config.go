// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App            AppConfig               `mapstructure:"app"`
	Server         ServerConfig            `mapstructure:"server"`
	Endpoints      EndpointsConfig         `mapstructure:"endpoints"`
	Classifier     ClassifierConfig        `mapstructure:"classifier"`
	Interpretation InterpretationConfig    `mapstructure:"interpretation"`
	Round          RoundConfig             `mapstructure:"round"`
	Camunda        CamundaConfig           `mapstructure:"camunda"`
	Database       DatabaseConfig          `mapstructure:"database"`
	Workers        map[string]WorkerConfig `mapstructure:"workers"`
	Logging        LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig covers the browser-facing API and the dummy message router.
type ServerConfig struct {
	Host          string   `mapstructure:"host"`
	Port          int      `mapstructure:"port"`
	RouterPort    int      `mapstructure:"router_port"`
	WebSocketPath string   `mapstructure:"websocket_path"`
	StaticDir     string   `mapstructure:"static_dir"`
	AllowOrigins  []string `mapstructure:"allow_origins"`
	Mode          string   `mapstructure:"mode"`
}

// Addr returns host:port for the main API listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RouterAddr returns host:port for the message router listener.
func (s ServerConfig) RouterAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.RouterPort)
}

// EndpointsConfig is the table of external services the relay talks to.
type EndpointsConfig struct {
	EnvOrchestrator string                   `mapstructure:"env_orch"`
	AgentMessage    string                   `mapstructure:"agent_message"`
	ChatUI          string                   `mapstructure:"chat_ui"`
	Utility         string                   `mapstructure:"utility"`
	Input           string                   `mapstructure:"input"`
	Output          string                   `mapstructure:"output"`
	Agents          map[string]AgentEndpoint `mapstructure:"agents"`
	Timeout         int                      `mapstructure:"timeout"` // milliseconds
}

// AgentEndpoint is how the orchestrator reaches one negotiation agent.
type AgentEndpoint struct {
	Protocol string `mapstructure:"protocol" json:"protocol"`
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
}

type ClassifierConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	ClassifyPath string `mapstructure:"classify_path"`
	APIKey       string `mapstructure:"api_key"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
	MaxRetries   int    `mapstructure:"max_retries"`
	CacheEnabled bool   `mapstructure:"cache_enabled"`
	CacheTTL     int    `mapstructure:"cache_ttl"` // seconds
}

// InterpretationConfig holds the constants of utterance interpretation.
type InterpretationConfig struct {
	ConfidenceFloor float64 `mapstructure:"confidence_floor"`
	DefaultCurrency string  `mapstructure:"default_currency"`
	DefaultAgent    string  `mapstructure:"default_agent"`
}

// RoundConfig points at the sample round fixture and the agent names the
// relay recognises at the start of a human utterance.
type RoundConfig struct {
	FixturePath  string   `mapstructure:"fixture_path"`
	AgentNames   []string `mapstructure:"agent_names"`
	Participants []string `mapstructure:"participants"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every job worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
