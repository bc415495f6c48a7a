package cli

import (
	"encoding/hex"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/smallyu/go-curves/pkg/signature"
)

type aggregated struct {
	Scheme    string `json:"scheme"`
	Signature string `json:"signature"`
	PublicKey string `json:"publicKey,omitempty"`
	Valid     *bool  `json:"valid,omitempty"`
}

func (a *app) aggregateCommand() *cobra.Command {
	var sigs, pubs, msgs []string
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate signatures and public keys, optionally verifying the batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.scheme(cmd)
			if err != nil {
				return err
			}
			agg, ok := s.(signature.Aggregator)
			if !ok {
				return errors.Errorf("scheme %q does not aggregate", s.Name())
			}
			sigBytes, err := decodeHexList(sigFlag, sigs)
			if err != nil {
				return err
			}
			sig, err := agg.AggregateSignatures(sigBytes)
			if err != nil {
				return err
			}
			out := aggregated{Scheme: s.Name(), Signature: hex.EncodeToString(sig)}

			pubBytes, err := decodeHexList(pubFlag, pubs)
			if err != nil {
				return err
			}
			if len(pubBytes) > 0 {
				pub, err := agg.AggregatePublicKeys(pubBytes)
				if err != nil {
					return err
				}
				out.PublicKey = hex.EncodeToString(pub)
			}

			verify, _ := cmd.Flags().GetBool(verifyFlag)
			if verify {
				if len(msgs) != len(pubBytes) {
					return errors.Wrapf(signature.ErrLengthMismatch, "%d messages for %d public keys", len(msgs), len(pubBytes))
				}
				m := make([][]byte, len(msgs))
				for i := range msgs {
					m[i] = []byte(msgs[i])
				}
				valid := agg.VerifyBatch(sig, m, pubBytes)
				out.Valid = &valid
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
				if !valid {
					return ErrVerificationFailed
				}
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	addSchemeFlag(cmd, "bls-long")
	cmd.Flags().StringArrayVar(&sigs, sigFlag, nil, "hex signature, repeatable")
	cmd.Flags().StringArrayVar(&pubs, pubFlag, nil, "hex public key, repeatable")
	cmd.Flags().StringArrayVar(&msgs, msgFlag, nil, "message signed under the matching --pub, repeatable")
	cmd.Flags().Bool(verifyFlag, false, "verify the aggregate against --msg and --pub")
	_ = cmd.MarkFlagRequired(sigFlag)
	return cmd
}
