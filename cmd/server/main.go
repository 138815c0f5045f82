package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-reservation/internal/auth"
	"github.com/iliyamo/flight-reservation/internal/booking"
	"github.com/iliyamo/flight-reservation/internal/config"
	"github.com/iliyamo/flight-reservation/internal/database"
	"github.com/iliyamo/flight-reservation/internal/handler"
	"github.com/iliyamo/flight-reservation/internal/planner"
	"github.com/iliyamo/flight-reservation/internal/queue"
	"github.com/iliyamo/flight-reservation/internal/router"
	"github.com/iliyamo/flight-reservation/internal/session"
	"github.com/iliyamo/flight-reservation/internal/store/mysql"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	st := mysql.New(db)
	sessions := session.NewRegistry()

	gate := auth.NewGate(st, auth.Params{
		Iterations: cfg.HashIterations,
		KeyLen:     cfg.HashKeyLen,
		SaltLen:    cfg.SaltLen,
	})

	authH := handler.NewAuthHandler(&cfg, gate, sessions)
	catH := handler.NewCatalogHandler(st)
	bookH := handler.NewBookingHandler(planner.New(st), booking.NewEngine(st))

	// Background consumer: append committed reservation events to the
	// audit log. It reconnects on broker failures and never takes the
	// API down with it.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, &cfg, config.NewRedisClient(), authH, catH, bookH, sessions)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
