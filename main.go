package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"elabcrm-backend/config"
	"elabcrm-backend/monitoring"
	"elabcrm-backend/routes"
	"elabcrm-backend/services"
	"elabcrm-backend/utils"

	"github.com/gin-gonic/gin"
)

const release = "1.0.0"

func main() {
	log.SetPrefix("ELABCRM: ")
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	if cfg.SentryDSN != "" {
		if err := utils.InitSentry(cfg.SentryDSN, cfg.Env, release); err != nil {
			log.Printf("Sentry disabled: %v", err)
		}
	}
	monitoring.Init()

	clients := services.NewClientService(db)
	communications := services.NewCommunicationService(db)
	auth := services.NewAuthService(db, cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)

	var closers []func() error

	if cfg.KafkaBroker != "" {
		producer, err := utils.NewKafkaProducer(cfg.KafkaBroker)
		if err != nil {
			log.Printf("Kafka disabled: %v", err)
		} else {
			clients.WithEvents(producer, cfg.ClientEventsTopic)
			closers = append(closers, producer.Close)
		}
	}

	if cfg.ElasticsearchURL != "" {
		index, err := utils.NewElasticsearchIndex(cfg.ElasticsearchURL, cfg.ElasticsearchIndex)
		if err != nil {
			log.Printf("Elasticsearch disabled: %v", err)
		} else {
			clients.WithSearchIndex(index)
		}
	}

	var tokenStore utils.TokenStore
	if cfg.RedisHost != "" {
		store, err := utils.NewRedisTokenStore(cfg.RedisHost, cfg.RedisPassword)
		if err != nil {
			log.Printf("Redis disabled, logout will not revoke tokens: %v", err)
		} else {
			tokenStore = store
			auth.WithTokenStore(store)
			closers = append(closers, store.Close)
		}
	}

	var syncer *services.CommunicationSyncer
	if cfg.TwilioEnabled() {
		messenger := utils.NewTwilioMessenger(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber)
		communications.WithMessenger(messenger)

		if cfg.CommunicationSyncSchedule != "" {
			syncer = services.NewCommunicationSyncer(db, messenger)
			if err := syncer.StartScheduler(cfg.CommunicationSyncSchedule); err != nil {
				log.Printf("Communication sync disabled: %v", err)
				syncer = nil
			}
		}
	}

	r := routes.SetupRouter(routes.Dependencies{
		Config:         cfg,
		DB:             db,
		Clients:        clients,
		Applications:   services.NewApplicationService(db),
		Documents:      services.NewDocumentService(db),
		Communications: communications,
		Auth:           auth,
		Dashboard:      services.NewDashboardService(db),
		TokenStore:     tokenStore,
	})
	printRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Listening on :%s (%s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if syncer != nil {
		syncer.Stop()
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close: %v", err)
		}
	}
	if err := config.CloseDB(db); err != nil {
		log.Printf("close database: %v", err)
	}
	utils.FlushSentry(2 * time.Second)
	log.Println("Server exited")
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
