// Package cli implements the curvetool commands.
package cli

import (
	"encoding/hex"
	"io"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/smallyu/go-curves/internal/config"
	"github.com/smallyu/go-curves/pkg/signature"
)

const (
	configFileFlag = "config"
	logLevelFlag   = "log-level"
	logFormatFlag  = "log-format"
	schemeFlag     = "scheme"
	curveFlag      = "curve"
	dstFlag        = "dst"
	keyFlag        = "key"
	pubFlag        = "pub"
	sigFlag        = "sig"
	msgFlag        = "msg"
	msgHexFlag     = "msg-hex"
	listenFlag     = "listen"
	verifyFlag     = "verify"

	FlagMissingError = "required flag missing: %q"
)

// ErrVerificationFailed is returned by verify when the signature is
// rejected, so the process exits with a non-zero status.
var ErrVerificationFailed = errors.New("signature verification failed")

type app struct {
	cfgPath   string
	logLevel  string
	logFormat string
	cfg       *config.Config
}

// GetRootCmd builds the curvetool command tree.
func GetRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}
	rootCmd := &cobra.Command{
		Use:               "curvetool",
		Short:             "Sign, verify and hash with the curves of go-curves",
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}
	f := rootCmd.PersistentFlags()
	f.StringVar(&a.cfgPath, configFileFlag, "", "YAML config file path")
	f.StringVar(&a.logLevel, logLevelFlag, "", "log level, overrides the config file")
	f.StringVar(&a.logFormat, logFormatFlag, "", "log format (text or json), overrides the config file")

	rootCmd.AddCommand(
		a.keygenCommand(),
		a.signCommand(),
		a.verifyCommand(),
		a.hashCommand(),
		a.aggregateCommand(),
		a.metricsCommand(),
	)
	return rootCmd
}

func (a *app) load(cmd *cobra.Command, args []string) error {
	if a.cfgPath != "" {
		cfg, err := config.FromFile(a.cfgPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		a.cfg.LogFormat = a.logFormat
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	if err := a.cfg.ApplyLogging(); err != nil {
		return err
	}
	log.SetOutput(cmd.ErrOrStderr())
	log.WithField("command", cmd.Name()).Debug("config loaded")
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func decodeHexFlag(cmd *cobra.Command, name string) ([]byte, error) {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	if v == "" {
		return nil, errors.Errorf(FlagMissingError, name)
	}
	b, err := hex.DecodeString(v)
	if err != nil {
		return nil, errors.Wrapf(err, "--%s", name)
	}
	return b, nil
}

func decodeHexList(name string, vs []string) ([][]byte, error) {
	out := make([][]byte, len(vs))
	for i, v := range vs {
		b, err := hex.DecodeString(v)
		if err != nil {
			return nil, errors.Wrapf(err, "--%s #%d", name, i)
		}
		out[i] = b
	}
	return out, nil
}

func addMessageFlags(cmd *cobra.Command) {
	cmd.Flags().String(msgFlag, "", "message as text")
	cmd.Flags().String(msgHexFlag, "", "message as hex, takes precedence over --msg")
}

func readMessage(cmd *cobra.Command) ([]byte, error) {
	if cmd.Flags().Changed(msgHexFlag) {
		return decodeHexFlag(cmd, msgHexFlag)
	}
	if !cmd.Flags().Changed(msgFlag) {
		return nil, errors.Errorf(FlagMissingError, msgFlag)
	}
	m, err := cmd.Flags().GetString(msgFlag)
	return []byte(m), err
}

func addSchemeFlag(cmd *cobra.Command, def string) {
	cmd.Flags().String(schemeFlag, def, "signature scheme, defaults to the config file value")
}

func (a *app) scheme(cmd *cobra.Command) (signature.Scheme, error) {
	name, _ := cmd.Flags().GetString(schemeFlag)
	return a.cfg.SignatureScheme(name)
}
