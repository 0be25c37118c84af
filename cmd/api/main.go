package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/campuskart/api/internal/cart"
	"github.com/campuskart/api/internal/catalog"
	"github.com/campuskart/api/internal/config"
	"github.com/campuskart/api/internal/httpx"
	kafkax "github.com/campuskart/api/internal/kafka"
	"github.com/campuskart/api/internal/market"
	"github.com/campuskart/api/internal/orders"
	"github.com/campuskart/api/internal/postgres"
	"github.com/campuskart/api/internal/ratings"
	"github.com/campuskart/api/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per order topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderCreated, 1024)
	pCreated.Start(ctx)
	pCompleted := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderCompleted, 1024)
	pCompleted.Start(ctx)
	pRemoved := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderRemoved, 1024)
	pRemoved.Start(ctx)

	// Repos & services
	itemRepo := &catalog.Repo{DB: db}
	cartRepo := &cart.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	ratingRepo := &ratings.Repo{DB: db}

	catalogSvc := &catalog.Service{Store: itemRepo, NewID: uuid.NewString}
	cartSvc := &cart.Service{Items: itemRepo, Store: cartRepo}
	orderSvc := &orders.Service{
		Carts: cartRepo,
		Store: orderRepo,
		Codes: market.NewCodeIssuer(cfg.OTPBcryptCost),
		NewID: uuid.NewString,
		Now:   func() time.Time { return time.Now().UTC() },
	}
	ratingSvc := &ratings.Service{Store: ratingRepo}

	// Router & handlers
	router := httpx.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(httpx.RequirePrincipal)
		(&httpx.CartHandler{Cart: cartSvc}).Register(r)
		(&httpx.OrdersHandler{
			Service:           orderSvc,
			ProducerCreated:   pCreated,
			ProducerCompleted: pCompleted,
			ProducerRemoved:   pRemoved,
			Redis:             rdb,
			ServiceName:       cfg.ServiceName,
		}).Register(r)
		(&httpx.CatalogHandler{Catalog: catalogSvc, Ratings: ratingSvc, Redis: rdb}).Register(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel() // stop producer loops, flush remaining messages
	pCreated.WaitClosed()
	pCompleted.WaitClosed()
	pRemoved.WaitClosed()
}
