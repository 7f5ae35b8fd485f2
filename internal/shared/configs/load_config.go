package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"galaxy-datagen/internal/shared/validators"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "DATAGEN"

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables are not overridden.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %q: %w", path, err)
		}
	}
	return nil
}

// LoadConfig reads configuration from file, applies DATAGEN_* environment
// overrides and validates it.
var LoadConfig = func(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	// DATAGEN_AUDIT_PATH overrides audit.path, and so on.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validators.New()
	if err := validate.Struct(&cfg); err != nil {
		var validationErrors []string
		if ve, ok := err.(validators.ValidationErrors); ok {
			for _, e := range ve {
				validationErrors = append(validationErrors, formatValidationError(e))
			}
		}
		return nil, fmt.Errorf("config validation failed: %s", strings.Join(validationErrors, ", "))
	}

	if err := resolveOutputDir(&cfg.Generator); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// resolveOutputDir defaults output_dir to work_dir. The generator is always
// given a relative --output, so data sets can only be served from work_dir.
func resolveOutputDir(gen *GeneratorConfig) error {
	workDir := gen.WorkDir
	if workDir == "" {
		workDir = "."
	}
	if gen.OutputDir == "" {
		gen.OutputDir = workDir
		return nil
	}

	absWorkDir, err := filepath.Abs(workDir)
	if err != nil {
		return fmt.Errorf("generator.work_dir (%w)", err)
	}
	absOutputDir, err := filepath.Abs(gen.OutputDir)
	if err != nil {
		return fmt.Errorf("generator.output_dir (%w)", err)
	}
	if absWorkDir != absOutputDir {
		return errors.New("generator.output_dir (must match generator.work_dir)")
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can override keys absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 0)
	v.SetDefault("server.read_header_timeout", 0)
	v.SetDefault("server.read_timeout", 0)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.idle_timeout", 0)
	v.SetDefault("server.proxy_protocol", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("audit.path", "")
	v.SetDefault("audit.time_zone", "")
	v.SetDefault("generator.command", "")
	v.SetDefault("generator.args", []string{})
	v.SetDefault("generator.work_dir", "")
	v.SetDefault("generator.output_dir", "")
	v.SetDefault("identity.user_header", "X-Remote-User")
}

// formatValidationError formats a single validation error as "<config.key> (<rule>)".
func formatValidationError(e validators.FieldError) string {
	field := e.Field()

	// "Config.server.port" -> "server.port"
	if _, path, ok := strings.Cut(e.Namespace(), "."); ok {
		field = path
	}

	switch tag := e.Tag(); tag {
	case "required":
		return fmt.Sprintf("%s (required)", field)
	case "min", "max", "oneof":
		return fmt.Sprintf("%s (%s=%s)", field, tag, e.Param())
	default:
		return fmt.Sprintf("%s (%s)", field, tag)
	}
}
