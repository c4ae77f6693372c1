package config

// Config is the notifyd configuration file (JSON or YAML).
//
// Parse decodes the file over Default(), so omitted keys keep their default
// while keys present with an empty value stay empty.
type Config struct {
	Notify  NotifyConfig  `json:"notify"`
	Views   ViewsConfig   `json:"views"`
	Logging LoggingConfig `json:"logging"`
	HTTP    HTTPConfig    `json:"http"`
}

// NotifyConfig holds the message store defaults.
type NotifyConfig struct {
	// DefaultMessageType groups messages added without an explicit type.
	DefaultMessageType string `json:"default_message_type" env:"NOTIFY_DEFAULT_MESSAGE_TYPE"`
	// View is the view rendered when a store has not been given another one.
	View string `json:"view" env:"NOTIFY_VIEW"`
	// StrictFilter makes rendering an unknown type return empty output
	// instead of every message.
	StrictFilter bool `json:"strict_filter,omitempty" env:"NOTIFY_STRICT_FILTER"`
}

// ViewsConfig controls file-backed templates.
//
// If Dir is empty only the built-in views are available.
type ViewsConfig struct {
	Dir string `json:"dir,omitempty" env:"NOTIFY_VIEWS_DIR"`
}

type LoggingConfig struct {
	Level   string      `json:"level" env:"NOTIFY_LOG_LEVEL"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// HTTPConfig controls the optional preview/health listener.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
// RatePerSec 0 disables rate limiting; Burst defaults to RatePerSec.
type HTTPConfig struct {
	Enabled      bool   `json:"enabled" env:"NOTIFY_HTTP_ENABLED"`
	Addr         string `json:"addr,omitempty" env:"NOTIFY_HTTP_ADDR"`
	ReadTimeout  string `json:"read_timeout,omitempty"`
	WriteTimeout string `json:"write_timeout,omitempty"`
	IdleTimeout  string `json:"idle_timeout,omitempty"`
	RatePerSec   int    `json:"rate_per_sec,omitempty"`
	Burst        int    `json:"burst,omitempty"`
}

const (
	DefaultMessageType = "information"
	DefaultView        = "notify/notify"
	DefaultHTTPAddr    = "127.0.0.1:8080"
)

// Default returns the configuration used for keys the file omits.
func Default() Config {
	return Config{
		Notify: NotifyConfig{
			DefaultMessageType: DefaultMessageType,
			View:               DefaultView,
		},
		Logging: LoggingConfig{Level: "info", Console: true},
		HTTP:    HTTPConfig{Addr: DefaultHTTPAddr},
	}
}
