package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"givechain.org/internal/chain"
	"givechain.org/internal/chain/eth"
	"givechain.org/internal/config"
	"givechain.org/internal/httpapi"
	"givechain.org/internal/identity"
	"givechain.org/internal/obs"
	"givechain.org/internal/payments"
	"givechain.org/internal/registry"
	"givechain.org/internal/stream"
	"givechain.org/internal/trigger"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg := config.Load()

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	var (
		identityStore identity.Store
		registryStore registry.Store
		paymentStore  payments.Store
	)
	if db != nil {
		identityStore = identity.NewPGStore(db)
		registryStore = registry.NewPGStore(db)
		paymentStore = payments.NewPGStore(db)
	} else {
		log.Println("no GIVECHAIN_PG_DSN set, using in-memory stores")
		memRegistry := registry.NewMemStore()
		identityStore = identity.NewMemStore()
		registryStore = memRegistry
		memPayments := payments.NewMemStore(memRegistry.RuleOwner)
		memRegistry.SetRuleInUse(memPayments.HasForRule)
		paymentStore = memPayments
	}

	identitySvc := identity.NewService(identityStore)
	registrySvc := registry.NewService(registryStore)
	paymentsSvc := payments.NewService(paymentStore)
	events := stream.New()

	var gateway chain.Gateway
	if cfg.EthRPCURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ChainTimeout)
		client, err := eth.Dial(ctx, cfg.EthRPCURL)
		cancel()
		if err != nil {
			log.Fatalf("dial ethereum node: %v", err)
		}
		gateway = client
	} else {
		log.Println("no GIVECHAIN_ETH_RPC_URL set, payment execution disabled")
	}

	var engine *trigger.Engine
	if gateway != nil {
		engine = trigger.NewEngine(registrySvc, gateway, paymentsSvc,
			trigger.WithTimeout(cfg.ChainTimeout),
			trigger.WithStream(events),
		)
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, httpapi.Deps{
		Identity: identitySvc,
		Registry: registrySvc,
		Payments: paymentsSvc,
		Trigger:  engine,
		Gateway:  gateway,
		Stream:   events,
	})

	handler := api.Handler()
	handler = httpapi.SecurityHeaders(handler)
	handler = httpapi.CORS(handler)
	handler = httpapi.RateLimit(handler, cfg.RateLimitBurst, cfg.RateLimitPerSecond)
	handler = httpapi.MaxBodyBytes(handler, 1<<20)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// no WriteTimeout: /v1/payments/stream holds its connection open
		IdleTimeout: 60 * time.Second,
	}

	log.Printf("Starting givechain-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
