package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dannygauntletai/autocrm/internal/config"
	"github.com/dannygauntletai/autocrm/internal/database"
	"github.com/dannygauntletai/autocrm/internal/events"
	"github.com/dannygauntletai/autocrm/internal/handler"
	"github.com/dannygauntletai/autocrm/internal/inbound"
	"github.com/dannygauntletai/autocrm/internal/mailer"
	"github.com/dannygauntletai/autocrm/internal/router"
	"github.com/dannygauntletai/autocrm/internal/service"
)

// API wires the HTTP server together for the serve command.
type API struct {
	cfg      *config.Config
	httpSrv  *http.Server
	producer *events.Producer
}

// NewAPI validates config, migrates the schema, and builds the full
// handler graph.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	ticketSvc := service.NewTicketService(db)
	teamSvc := service.NewTeamService(db)
	mailClient := mailer.NewClient(cfg.SendGridAPIKey, cfg.FromEmail, cfg.InboundEmailDomain)
	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicTicket)
	processor := inbound.NewProcessor(ticketSvc)

	ticketHandler := handler.NewTicketHandler(ticketSvc, mailClient, producer)
	teamHandler := handler.NewTeamHandler(teamSvc)
	inboundHandler := handler.NewInboundHandler(processor, producer)

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(ticketHandler, teamHandler, inboundHandler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:      cfg,
		httpSrv:  httpSrv,
		producer: producer,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", a.httpSrv.Addr)
	log.Printf("  Swagger UI:    %s/swagger", base)
	log.Printf("  Health:        %s/health", base)
	log.Printf("  API v1:        %s/api/v1/", base)
	log.Printf("  Email webhook: %s/webhooks/email-reply", base)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := a.producer.Close(); err != nil {
		log.Printf("events: close producer: %v", err)
	}
	return nil
}
