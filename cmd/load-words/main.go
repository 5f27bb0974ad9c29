package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/kira8ke/GloHub/internal/config"
	"github.com/kira8ke/GloHub/internal/db"
	"github.com/kira8ke/GloHub/internal/logging"
)

func main() {
	filePath := flag.String("file", "words.csv", "path to a category,word csv")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	loaded, err := db.LoadWordLibrary(conn, *filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("failed to load words")
	}
	log.Info().Int("words", loaded).Msg("word library loaded")
}
