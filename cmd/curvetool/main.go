package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/smallyu/go-curves/internal/cli"
)

func main() {
	if err := cli.GetRootCmd().Execute(); err != nil {
		log.WithError(err).Debug("curvetool failed")
		os.Exit(1)
	}
}
