package main

import (
	"log"

	"servio/internal/config"
	"servio/internal/database"
	"servio/internal/devserver"
	"servio/internal/pkg/jwt"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	srv, err := devserver.New(db, jwt.New(cfg.JWTSecret, cfg.TokenTTL))
	if err != nil {
		log.Fatal(err)
	}
	if err := devserver.Seed(db); err != nil {
		log.Fatal(err)
	}

	log.Printf("devserver: listening on %s", cfg.Addr)
	if err := srv.Router().Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
