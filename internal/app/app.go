package app

import (
	"context"
	"errors"
	"net/http"

	"club-app-go/internal/auth"
	"club-app-go/internal/config"
	"club-app-go/internal/db"
	accessdomain "club-app-go/internal/domain/access"
	billingdomain "club-app-go/internal/domain/billing"
	identitydomain "club-app-go/internal/domain/identity"
	membershipdomain "club-app-go/internal/domain/membership"
	schedulingdomain "club-app-go/internal/domain/scheduling"
	"club-app-go/internal/messaging"
	"club-app-go/internal/repository/inmemory"
	accessrepo "club-app-go/internal/repository/postgres/access"
	billingrepo "club-app-go/internal/repository/postgres/billing"
	identityrepo "club-app-go/internal/repository/postgres/identity"
	membershiprepo "club-app-go/internal/repository/postgres/membership"
	schedulingrepo "club-app-go/internal/repository/postgres/scheduling"
	"club-app-go/internal/transport/httpserver"
	"club-app-go/internal/transport/httpserver/handler"
	accesshandler "club-app-go/internal/transport/httpserver/handler/access"
	billinghandler "club-app-go/internal/transport/httpserver/handler/billing"
	commonhandler "club-app-go/internal/transport/httpserver/handler/common"
	membershandler "club-app-go/internal/transport/httpserver/handler/members"
	schedulinghandler "club-app-go/internal/transport/httpserver/handler/scheduling"
	authmw "club-app-go/internal/transport/httpserver/middleware"
	"club-app-go/migrations"
	"club-app-go/pkg/logger"
	"club-app-go/pkg/telemetry"
	"gorm.io/gorm"
)

type publisher interface {
	membershipdomain.EventPublisher
	Close() error
}

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	publisher  publisher
	shutdown   func(context.Context) error
	log        logger.Logger
}

func New(ctx context.Context, log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing telemetry")
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Env,
	})
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := db.Migrate(ctx, dbConn, migrations.Files, log); err != nil {
			return nil, err
		}
	}

	var events publisher = messaging.Discard{}
	if cfg.Messaging.AMQPURL != "" {
		log.Info("app: connecting to broker", "exchange", cfg.Messaging.Exchange)
		amqpPublisher, err := messaging.NewPublisher(cfg.Messaging.AMQPURL, cfg.Messaging.Exchange)
		if err != nil {
			return nil, err
		}
		events = amqpPublisher
	}

	log.Info("app: initializing router")
	router := NewRouter(cfg, dbConn, events, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
		publisher:  events,
		shutdown:   shutdown,
		log:        log,
	}, nil
}

// NewRouter wires repositories, services and handlers over dbConn.
func NewRouter(cfg config.Config, dbConn *gorm.DB, events membershipdomain.EventPublisher, log logger.Logger) http.Handler {
	identityRepo := identityrepo.NewPostgres(dbConn)
	billingRepo := billingrepo.NewPostgres(dbConn)
	membershipRepo := membershiprepo.NewPostgres(dbConn)
	schedulingRepo := schedulingrepo.NewPostgres(dbConn)
	accessRepo := accessrepo.NewPostgres(dbConn)

	tokens := auth.NewTokenManager(cfg.Auth.SigningKey(), cfg.Auth.TokenTTL, cfg.Auth.Issuer)

	billingService := billingdomain.NewService(
		billingRepo,
		billingdomain.NewSimulatedGateway(cfg.Gateway.FailMethods),
		inmemory.NewStandingCache(),
		billingdomain.Options{
			BaseAmount:  cfg.Dues.BaseAmount,
			DueDay:      cfg.Dues.DueDay,
			Currency:    cfg.Dues.Currency,
			StandingTTL: cfg.Dues.StandingCacheTTL,
		},
	)
	identityService := identitydomain.NewService(identityRepo, tokens)
	membershipService := membershipdomain.NewService(membershipRepo, billingService, events, log)
	schedulingService := schedulingdomain.NewService(schedulingRepo)
	accessService := accessdomain.NewService(
		accessRepo,
		identityRepo,
		membershipRepo,
		billingService,
		schedulingService,
		log,
		cfg.Access.EventLookahead,
	)

	handlers := handler.New(
		commonhandler.New(identityService, log),
		membershandler.New(membershipService, log),
		billinghandler.New(billingService, log),
		schedulinghandler.New(schedulingService, log),
		accesshandler.New(
			accessService,
			authmw.NewRateLimiter(cfg.Access.RatePerSecond, cfg.Access.RateBurst),
			log,
		),
	)
	return httpserver.NewRouter(cfg, handlers, tokens, log)
}

// RunMigrations applies the embedded schema and exits, for deployments that
// run migrations as a separate step with DB_AUTO_MIGRATE=false.
func RunMigrations(ctx context.Context, log logger.Logger) error {
	cfg, err := config.Load(log)
	if err != nil {
		return err
	}
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return err
	}
	sqlDB, err := dbConn.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return db.Migrate(ctx, dbConn, migrations.Files, log)
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
