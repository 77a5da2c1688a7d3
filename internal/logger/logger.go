// Package logger builds the zerolog.Logger shared by the CLI, the SOAP
// client hooks and the playground.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type Config struct {
	Level       string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" env:"FORMAT" validate:"oneof=json console"`
	Output      string `yaml:"output" env:"OUTPUT" validate:"oneof=stdout stderr"`
	ServiceName string `yaml:"serviceName" env:"SERVICE_NAME"`
	WithCaller  bool   `yaml:"withCaller" env:"WITH_CALLER"`
}

func (c *Config) setDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	// stdout 留给命令的输出
	if c.Output == "" {
		c.Output = "stderr"
	}
	if c.ServiceName == "" {
		c.ServiceName = "adkit"
	}
}

// New validates cfg and builds a logger writing to stdout or stderr.
func New(cfg *Config) (zerolog.Logger, error) {
	var w io.Writer = os.Stderr
	if cfg.Output == "stdout" {
		w = os.Stdout
	}
	return NewWithWriter(cfg, w)
}

// NewWithWriter is New with an explicit writer; Output is ignored.
func NewWithWriter(cfg *Config, w io.Writer) (zerolog.Logger, error) {
	cfg.setDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return zerolog.Nop(), fmt.Errorf("logger config validation error: %w", err)
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	lc := zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", cfg.ServiceName)
	if cfg.WithCaller {
		lc = lc.Caller()
	}
	return lc.Logger(), nil
}
