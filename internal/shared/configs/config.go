package configs

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Log       LogConfig       `mapstructure:"log" validate:"required"`
	Audit     AuditConfig     `mapstructure:"audit" validate:"required"`
	Generator GeneratorConfig `mapstructure:"generator" validate:"required"`
	Identity  IdentityConfig  `mapstructure:"identity"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port              int  `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadHeaderTimeout int  `mapstructure:"read_header_timeout" validate:"required,min=1"` // seconds
	ReadTimeout       int  `mapstructure:"read_timeout" validate:"required,min=1"`        // seconds (headers+body)
	WriteTimeout      int  `mapstructure:"write_timeout" validate:"required,min=1"`       // seconds (response)
	IdleTimeout       int  `mapstructure:"idle_timeout" validate:"required,min=1"`        // seconds (keep-alive)
	ProxyProtocol     bool `mapstructure:"proxy_protocol"`                                // accept PROXY protocol v1/v2 headers
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required"`
}

// AuditConfig holds the audit log configuration.
type AuditConfig struct {
	Path     string `mapstructure:"path" validate:"required"`
	TimeZone string `mapstructure:"time_zone" validate:"omitempty,timezone"`
}

// GeneratorConfig describes the external data-set generator.
type GeneratorConfig struct {
	Command   string   `mapstructure:"command" validate:"required"`
	Args      []string `mapstructure:"args"`
	WorkDir   string   `mapstructure:"work_dir"`   // empty: the process working directory
	OutputDir string   `mapstructure:"output_dir"` // defaults to work_dir, where --output <n>.csv lands
}

// IdentityConfig holds how the authenticated user is read from requests.
type IdentityConfig struct {
	UserHeader string `mapstructure:"user_header"`
}
