package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/soderasen-au/go-common/util"
	"gopkg.in/yaml.v3"

	"github.com/soderasen-au/go-sheetpdf/report"
	"github.com/soderasen-au/go-sheetpdf/service"
)

const (
	DEFAULT_ADDR           = ":8080"
	DEFAULT_LOG_FILE_NAME  = "sheetpdf.log"
	DEFAULT_MAX_CONCURRENT = 4
)

type SystemConfig struct {
	LogFolder    string `json:"log_folder,omitempty" yaml:"log_folder,omitempty"`
	OutputFolder string `json:"output_folder,omitempty" yaml:"output_folder,omitempty"`
}

func (c SystemConfig) LogFile() string {
	return filepath.Join(c.LogFolder, DEFAULT_LOG_FILE_NAME)
}

type ServerConfig struct {
	Addr          string `json:"addr,omitempty" yaml:"addr,omitempty"`
	MaxUploadSize int64  `json:"max_upload_size,omitempty" yaml:"max_upload_size,omitempty"`
	MaxConcurrent int    `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`
	// bearer tokens are required when set
	JwtSecret string `json:"jwt_secret,omitempty" yaml:"jwt_secret,omitempty"`
	JwtIssuer string `json:"jwt_issuer,omitempty" yaml:"jwt_issuer,omitempty"`
}

type AuditConfig struct {
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

func (c AuditConfig) Enabled() bool {
	return c.File != ""
}

type Config struct {
	System SystemConfig        `json:"system" yaml:"system"`
	Server ServerConfig        `json:"server" yaml:"server"`
	Layout report.LayoutConfig `json:"layout" yaml:"layout"`
	Audit  AuditConfig         `json:"audit" yaml:"audit"`
}

// Default is the zero config with every default filled in. It panics when
// the built-in defaults fail their own validation.
func Default() *Config {
	cfg := &Config{}
	if res := cfg.Validate(); res != nil {
		panic(fmt.Sprintf("config: defaults do not validate: %v", res))
	}
	return cfg
}

// Validate fills defaults and checks the layout.
func (c *Config) Validate() *util.Result {
	if c.System.LogFolder == "" {
		c.System.LogFolder = "."
	}
	if c.System.OutputFolder == "" {
		c.System.OutputFolder = "."
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DEFAULT_ADDR
	}
	if c.Server.MaxUploadSize <= 0 {
		c.Server.MaxUploadSize = service.DEFAULT_MAX_UPLOAD
	}
	if c.Server.MaxConcurrent <= 0 {
		c.Server.MaxConcurrent = DEFAULT_MAX_CONCURRENT
	}
	if res := c.Layout.Validate(); res != nil {
		return res.With("Layout")
	}
	return nil
}

func (c *Config) ServiceOptions() service.Options {
	return service.Options{
		Layout:        c.Layout,
		MaxUploadSize: c.Server.MaxUploadSize,
		MaxConcurrent: c.Server.MaxConcurrent,
	}
}

func Parse(data []byte) (*Config, *util.Result) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, util.Error("ParseYAML", err)
	}
	if res := cfg.Validate(); res != nil {
		return nil, res.With("Validate")
	}
	return &cfg, nil
}

// Load reads a YAML config file. An empty path yields the defaults.
func Load(path string) (*Config, *util.Result) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, util.Error("ReadConfigFile", err)
	}
	cfg, res := Parse(data)
	if res != nil {
		return nil, res.With(path)
	}
	return cfg, nil
}
