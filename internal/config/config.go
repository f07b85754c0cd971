package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	DefaultPath    = "config/agent.json"
	DefaultEnvFile = ".env"
)

type AppConfig struct {
	Logging LoggingConfig `json:"logging" toml:"logging"`
	LLM     LLMConfig     `json:"llm" toml:"llm"`
	Speech  SpeechConfig  `json:"speech" toml:"speech"`
	Agent   AgentConfig   `json:"agent" toml:"agent"`
}

type LoggingConfig struct {
	Level  string `json:"level" toml:"level"`
	Format string `json:"format" toml:"format"`
}

type LLMConfig struct {
	APIKey  string `json:"api_key" toml:"api_key"`
	BaseURL string `json:"base_url" toml:"base_url"`
	Model   string `json:"model" toml:"model"`
}

// SpeechConfig 语音 SDK 的密钥，聊天模式下不使用，只需存在
type SpeechConfig struct {
	DeepgramAPIKey   string `json:"deepgram_api_key" toml:"deepgram_api_key"`
	ElevenLabsAPIKey string `json:"elevenlabs_api_key" toml:"elevenlabs_api_key"`
}

type AgentConfig struct {
	ToolTimeout   Duration `json:"tool_timeout" toml:"tool_timeout"`
	MaxToolRounds int      `json:"max_tool_rounds" toml:"max_tool_rounds"`
}

// Duration 支持 "2s" 或秒数两种写法
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.set(raw)
}

func (d *Duration) UnmarshalTOML(data interface{}) error {
	return d.set(data)
}

func (d *Duration) set(raw interface{}) error {
	parsed, err := parseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func parseDuration(raw interface{}) (time.Duration, error) {
	switch v := raw.(type) {
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case string:
		v = strings.TrimSpace(v)
		if secs, err := cast.ToFloat64E(v); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		return cast.ToDurationE(v)
	default:
		return cast.ToDurationE(v)
	}
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		Logging: LoggingConfig{},
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Agent: AgentConfig{
			ToolTimeout:   Duration(2 * time.Second),
			MaxToolRounds: 8,
		},
	}
}

func Load(path string) (*AppConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	cfg := DefaultConfig()
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}

	if err := LoadDotEnv(DefaultEnvFile); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func decodeFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return nil
}

// LoadDotEnv 读取 .env，已存在的环境变量不会被覆盖
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) ApplyEnv() error {
	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		c.Logging.Level = level
	}
	if format := strings.TrimSpace(os.Getenv("LOG_FORMAT")); format != "" {
		c.Logging.Format = format
	}

	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		c.LLM.APIKey = key
	}
	if baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); baseURL != "" {
		c.LLM.BaseURL = baseURL
	}
	if model := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); model != "" {
		c.LLM.Model = model
	}

	// 未设置时保持空字符串
	if key, ok := os.LookupEnv("DEEPGRAM_API_KEY"); ok {
		c.Speech.DeepgramAPIKey = key
	}
	if key, ok := os.LookupEnv("ELEVENLABS_API_KEY"); ok {
		c.Speech.ElevenLabsAPIKey = key
	}

	if raw := strings.TrimSpace(os.Getenv("AGENT_TOOL_TIMEOUT")); raw != "" {
		timeout, err := parseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid AGENT_TOOL_TIMEOUT: %s", raw)
		}
		c.Agent.ToolTimeout = Duration(timeout)
	}
	return nil
}

func (c *AppConfig) Validate() error {
	if c.Agent.ToolTimeout <= 0 {
		return errors.New("agent.tool_timeout must be positive")
	}
	if c.Agent.MaxToolRounds < 0 {
		return errors.New("agent.max_tool_rounds must be non-negative")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model is required")
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}
	return nil
}

func (c *AppConfig) ValidateKeys(requireLLM bool) error {
	if requireLLM && strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("llm api_key is required (set OPENAI_API_KEY)")
	}
	return nil
}
