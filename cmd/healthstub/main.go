package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/sudha-nunna/healthcare-project/internal/stubserver"
)

func main() {
	addr := flag.String("addr", ":4000", "listen address")
	flag.Parse()

	log.Info().Str("addr", *addr).Msg("starting HealthCompare stub backend")

	srv := stubserver.New()
	if err := srv.Run(*addr); err != nil {
		log.Fatal().Err(err).Msg("stub backend exited")
	}
}
