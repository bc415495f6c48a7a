package cli

import (
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/smallyu/go-curves/internal/crypto/curves"
)

type hashed struct {
	Curve string `json:"curve"`
	DST   string `json:"dst,omitempty"`
	Point string `json:"point"`
}

func (a *app) hashCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-to-curve",
		Short: "Hash a message to a curve point with the random-oracle suite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString(curveFlag)
			if name == "" {
				name = a.cfg.Curve
			}
			dst, _ := cmd.Flags().GetString(dstFlag)
			if dst == "" {
				dst = a.cfg.DST
			}
			g, err := curves.ByName(name)
			if err != nil {
				return err
			}
			msg, err := readMessage(cmd)
			if err != nil {
				return err
			}
			var tag []byte
			if dst != "" {
				tag = []byte(dst)
			}
			p, err := g.HashToPoint(msg, tag)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), hashed{Curve: g.Name(), DST: dst, Point: hex.EncodeToString(p.Bytes())})
		},
	}
	cmd.Flags().String(curveFlag, "", "curve name, defaults to the config file value")
	cmd.Flags().String(dstFlag, "", "domain separation tag, defaults to the suite tag")
	addMessageFlags(cmd)
	return cmd
}
