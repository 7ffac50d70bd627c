// Package config loads engine configuration from command line flags
// and FORM_ANNOTATE_* environment variables, flags taking precedence.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Operating modes. The MCP modes expose the engine as tools; the
	// direct modes run one operation and exit.
	ModeStdio    = "stdio"
	ModeServer   = "server"
	ModeValidate = "validate"
	ModeBind     = "bind"
	ModeInspect  = "inspect"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 32 * 1024 * 1024 // 32MB
	DefaultWorkers     = 1
	DefaultPDFBackend  = "auto"
)

// Config holds all configuration for the form annotation engine.
type Config struct {
	// Mode selects MCP serving or a one-shot operation.
	Mode string
	Host string
	Port int

	// Operation inputs
	DocumentPath string
	DataPath     string
	PDFPath      string

	// Engine tuning
	Workers    int
	PDFBackend string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode:        ModeStdio, // stdio keeps MCP clients working out of the box
		Host:        DefaultHost,
		Port:        DefaultPort,
		Workers:     DefaultWorkers,
		PDFBackend:  DefaultPDFBackend,
		Version:     "1.0.0",
		ServerName:  "form-annotate",
		LogLevel:    DefaultLogLevel,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults.
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("FORM_ANNOTATE")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("document", cfg.DocumentPath)
	viper.SetDefault("data", cfg.DataPath)
	viper.SetDefault("pdf", cfg.PDFPath)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("pdfbackend", cfg.PDFBackend)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags.
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Mode: 'stdio' or 'server' for MCP; 'validate', 'bind', 'inspect' for one-shot runs")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("document", cfg.DocumentPath, "Annotation document JSON file")
	pflag.String("data", cfg.DataPath, "Data tree JSON file (bind mode)")
	pflag.String("pdf", cfg.PDFPath, "Source PDF file (inspect mode)")
	pflag.Int("workers", cfg.Workers, "Concurrent field resolutions per bind")
	pflag.String("pdfbackend", cfg.PDFBackend, "PDF library: auto, pdfcpu, or ledongthuc")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum input file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration.
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("document", pflag.Lookup("document"))
	_ = viper.BindPFlag("data", pflag.Lookup("data"))
	_ = viper.BindPFlag("pdf", pflag.Lookup("pdf"))
	_ = viper.BindPFlag("workers", pflag.Lookup("workers"))
	_ = viper.BindPFlag("pdfbackend", pflag.Lookup("pdfbackend"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message.
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nform-annotate - validate and data-bind tax form annotation documents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                              # MCP stdio mode (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --port=8081                    # MCP over HTTP\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=validate --document=f1040.json        # structural pass\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=bind --document=f1040.json --data=taxpayer.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=inspect --document=f1040.json --pdf=f1040.pdf\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  FORM_ANNOTATE_MODE         Operating mode\n")
		fmt.Fprintf(os.Stderr, "  FORM_ANNOTATE_HOST         Server host\n")
		fmt.Fprintf(os.Stderr, "  FORM_ANNOTATE_PORT         Server port\n")
		fmt.Fprintf(os.Stderr, "  FORM_ANNOTATE_DOCUMENT     Annotation document path\n")
		fmt.Fprintf(os.Stderr, "  FORM_ANNOTATE_DATA         Data tree path\n")
		fmt.Fprintf(os.Stderr, "  FORM_ANNOTATE_PDF          Source PDF path\n")
		fmt.Fprintf(os.Stderr, "  FORM_ANNOTATE_WORKERS      Bind concurrency\n")
		fmt.Fprintf(os.Stderr, "  FORM_ANNOTATE_PDFBACKEND   PDF library backend\n")
		fmt.Fprintf(os.Stderr, "  FORM_ANNOTATE_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  FORM_ANNOTATE_MAXFILESIZE  Maximum input file size\n")
	}
}

// checkVersionFlag checks if version flag was requested.
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper.
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.DocumentPath = viper.GetString("document")
	cfg.DataPath = viper.GetString("data")
	cfg.PDFPath = viper.GetString("pdf")
	cfg.Workers = viper.GetInt("workers")
	cfg.PDFBackend = viper.GetString("pdfbackend")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeStdio, ModeServer:
	case ModeValidate, ModeBind, ModeInspect:
		if c.DocumentPath == "" {
			return fmt.Errorf("%s mode requires --document", c.Mode)
		}
		if c.Mode == ModeBind && c.DataPath == "" {
			return errors.New("bind mode requires --data")
		}
		if c.Mode == ModeInspect && c.PDFPath == "" {
			return errors.New("inspect mode requires --pdf")
		}
	default:
		return fmt.Errorf("mode must be one of stdio, server, validate, bind, inspect; got %q", c.Mode)
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}

	switch c.PDFBackend {
	case "auto", "pdfcpu", "ledongthuc":
	default:
		return fmt.Errorf("invalid pdf backend: %s (must be one of: auto, pdfcpu, ledongthuc)", c.PDFBackend)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled.
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsServerMode returns true when serving MCP over HTTP.
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true when serving MCP over standard I/O.
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// IsOneShot returns true for the direct validate/bind/inspect modes.
func (c *Config) IsOneShot() bool {
	return c.Mode == ModeValidate || c.Mode == ModeBind || c.Mode == ModeInspect
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, Document: %s, LogLevel: %s, Workers: %d}",
		c.Mode, c.Host, c.Port, c.DocumentPath, c.LogLevel, c.Workers)
}
