package cli

import (
	"encoding/hex"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type keyPair struct {
	Scheme     string `json:"scheme"`
	PrivateKey string `json:"privateKey"`
	PublicKey  string `json:"publicKey"`
}

type signed struct {
	Scheme    string `json:"scheme"`
	Signature string `json:"signature"`
}

type verified struct {
	Scheme string `json:"scheme"`
	Valid  bool   `json:"valid"`
}

func (a *app) keygenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.scheme(cmd)
			if err != nil {
				return err
			}
			priv, err := s.GenerateKey()
			if err != nil {
				return err
			}
			pub, err := s.PublicKey(priv)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), keyPair{
				Scheme:     s.Name(),
				PrivateKey: hex.EncodeToString(priv),
				PublicKey:  hex.EncodeToString(pub),
			})
		},
	}
	addSchemeFlag(cmd, "")
	return cmd
}

func (a *app) signCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message with a hex private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.scheme(cmd)
			if err != nil {
				return err
			}
			priv, err := decodeHexFlag(cmd, keyFlag)
			if err != nil {
				return err
			}
			msg, err := readMessage(cmd)
			if err != nil {
				return err
			}
			sig, err := s.Sign(msg, priv)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), signed{Scheme: s.Name(), Signature: hex.EncodeToString(sig)})
		},
	}
	addSchemeFlag(cmd, "")
	addMessageFlags(cmd)
	cmd.Flags().String(keyFlag, "", "hex private key")
	_ = cmd.MarkFlagRequired(keyFlag)
	return cmd
}

func (a *app) verifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a hex signature against a hex public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.scheme(cmd)
			if err != nil {
				return err
			}
			pub, err := decodeHexFlag(cmd, pubFlag)
			if err != nil {
				return err
			}
			sig, err := decodeHexFlag(cmd, sigFlag)
			if err != nil {
				return err
			}
			msg, err := readMessage(cmd)
			if err != nil {
				return err
			}
			ok := s.Verify(sig, msg, pub)
			log.WithFields(log.Fields{"scheme": s.Name(), "valid": ok}).Debug("verified")
			if err := writeJSON(cmd.OutOrStdout(), verified{Scheme: s.Name(), Valid: ok}); err != nil {
				return err
			}
			if !ok {
				return ErrVerificationFailed
			}
			return nil
		},
	}
	addSchemeFlag(cmd, "")
	addMessageFlags(cmd)
	cmd.Flags().String(pubFlag, "", "hex public key")
	cmd.Flags().String(sigFlag, "", "hex signature")
	_ = cmd.MarkFlagRequired(pubFlag)
	_ = cmd.MarkFlagRequired(sigFlag)
	return cmd
}
