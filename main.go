package main

import (
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/cli"
)

func main() {
	if err := cli.Root().Execute(); err != nil {
		log.Fatal().Err(err).Msg("treasure exited")
	}
}
