// Package config holds the settings of the curvetool command and the
// logging setup shared by its subcommands.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/smallyu/go-curves/internal/crypto/curves"
	"github.com/smallyu/go-curves/pkg/bls"
	"github.com/smallyu/go-curves/pkg/ecdsa"
	"github.com/smallyu/go-curves/pkg/eddsa"
	"github.com/smallyu/go-curves/pkg/schnorr"
	"github.com/smallyu/go-curves/pkg/signature"
)

// Config is read from a YAML file and overridden by flags.
type Config struct {
	Scheme string `yaml:"scheme"`
	Curve  string `yaml:"curve"`
	// DST overrides the hash-to-curve and BLS tags when set.
	DST    string `yaml:"dst"`
	ZIP215 bool   `yaml:"zip215"`
	LowS   bool   `yaml:"lowS"`

	CacheSize int           `yaml:"cacheSize"`
	CacheTTL  time.Duration `yaml:"cacheTTL"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	MetricsAddr string `yaml:"metricsAddr"`
}

// Default values.
const (
	DefaultScheme    = "ed25519"
	DefaultCurve     = curves.NameP256
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default returns the configuration used without a file.
func Default() *Config {
	b := bls.DefaultConfig()
	return &Config{
		Scheme:    DefaultScheme,
		Curve:     DefaultCurve,
		ZIP215:    true,
		LowS:      true,
		CacheSize: b.CacheSize,
		CacheTTL:  b.CacheTTL,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// FromFile reads path on top of the defaults. Keys missing from the file
// keep their default values.
func FromFile(path string) (*Config, error) {
	c := Default()
	log.Debugf("ConfigPath=%s", path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: read")
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, errors.Wrap(err, "config: decode")
	}
	return c, c.Validate()
}

// Validate checks names and levels.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "config: logLevel")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Errorf("config: logFormat must be text or json, got %q", c.LogFormat)
	}
	if _, err := curves.ByName(c.Curve); err != nil {
		return errors.Wrap(err, "config: curve")
	}
	if c.CacheSize < 0 || c.CacheTTL < 0 {
		return errors.New("config: cache settings must not be negative")
	}
	return nil
}

// ApplyLogging configures the standard logrus logger.
func (c *Config) ApplyLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return errors.Wrap(err, "config: logLevel")
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// SignatureScheme returns the named signature scheme with the settings of c
// applied. Schemes without tunables come from the registry.
func (c *Config) SignatureScheme(name string) (signature.Scheme, error) {
	if name == "" {
		name = c.Scheme
	}
	switch name {
	case ecdsa.Secp256k1.Name(), ecdsa.P256.Name():
		e := ecdsa.DefaultConfig()
		e.LowS = c.LowS
		if name == ecdsa.P256.Name() {
			return ecdsa.NewP256(e), nil
		}
		return ecdsa.NewSecp256k1(e), nil
	case eddsa.Ed25519.Name():
		return eddsa.Ed25519.WithVerifyOptions(eddsa.VerifyOptions{ZIP215: c.ZIP215}), nil
	case eddsa.Ed25519ph.Name():
		return eddsa.Ed25519ph.WithVerifyOptions(eddsa.VerifyOptions{ZIP215: c.ZIP215}), nil
	case bls.Long.Name(), bls.Short.Name():
		b := bls.Config{CacheSize: c.CacheSize, CacheTTL: c.CacheTTL}
		if c.DST != "" {
			b.DST = []byte(c.DST)
		}
		if name == bls.Long.Name() {
			return bls.NewLong(b), nil
		}
		return bls.NewShort(b), nil
	case schnorr.BIP340.Name():
		return schnorr.BIP340, nil
	}
	return signature.Lookup(name)
}
