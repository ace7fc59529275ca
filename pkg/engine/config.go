package engine

import (
	"errors"
	"net/url"
	"os"
	"path"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/mavedirra/nmb/pkg/sshx"
)

// DefaultCatalogURL points at the module directory of the public
// pi-turtle repository.
const DefaultCatalogURL = "https://api.github.com/repos/mavedirra-01/pi-turtle/contents/modules"

// Config describes a workspace: where modules are stored, which
// catalog serves them and how remote targets are reached.
type Config struct {
	// Catalog is the URL of a directory in the shape of the GitHub
	// contents API that serves module files.
	Catalog string `yaml:"catalog"`

	// Storage is the root directory that modules and their logs are
	// stored under.
	Storage string `yaml:"storage"`

	// RemoteDir is the directory that modules are staged in on a
	// remote target before they are run.
	RemoteDir string `yaml:"remote-dir"`

	// LogLevel adjusts the verbosity of the console output.
	LogLevel string `yaml:"log-level"`

	// SSH holds connection defaults that are applied to every
	// connect, such as the port, a key file or a host key
	// fingerprint.
	SSH sshx.Config `yaml:"ssh"`

	// SSHProxy describes the SSH connection configuration
	// for an SSH proxy, often also referred to as bastion
	// host or jumpbox.
	SSHProxy sshx.Config `yaml:"ssh-proxy"`
}

// DefaultConfig returns the configuration that is used when no
// configuration file exists.
func DefaultConfig() *Config {
	return &Config{
		Catalog:   DefaultCatalogURL,
		Storage:   ".",
		RemoteDir: "/tmp",
		LogLevel:  "info",
	}
}

// Merge applies all non-zero fields of the overrides on top of this
// configuration.
func (c *Config) Merge(overrides *Config) error {
	return mergo.Merge(c, overrides, mergo.WithOverride)
}

// Verify verifies the configuration file.
func (c *Config) Verify() error {
	if c == nil {
		return errors.New("configuration empty")
	}

	if c.Catalog == "" {
		return errors.New("no catalog specified")
	}
	if parsed, err := url.Parse(c.Catalog); err != nil || parsed.Scheme == "" {
		return errors.New("catalog must be a valid URL")
	}

	if c.Storage == "" {
		return errors.New("no storage directory specified")
	}

	if !path.IsAbs(c.RemoteDir) {
		return errors.New("remote directory must be an absolute path")
	}

	return nil
}

// LoadConfig loads the configuration file at the given path. A
// missing file is not an error; fields that the file does not set
// keep their default value.
func LoadConfig(configFile string) (*Config, error) {
	config := DefaultConfig()

	configBytes, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	// Parse YAML config into struct.
	loaded := new(Config)
	if err := yaml.Unmarshal(configBytes, loaded); err != nil {
		return nil, err
	}

	if err := config.Merge(loaded); err != nil {
		return nil, err
	}

	return config, nil
}
