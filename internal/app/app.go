package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/filegate/filegate/internal/config"
	"github.com/filegate/filegate/internal/db"
	"github.com/filegate/filegate/internal/handler"
	"github.com/filegate/filegate/internal/repository"
	"github.com/filegate/filegate/internal/service"
	"github.com/filegate/filegate/internal/session"
	"github.com/filegate/filegate/internal/transport"
)

type App struct {
	Cfg      *config.Config
	DB       *sqlx.DB
	Telegram *transport.Telegram
	Sessions *session.Tracker
	Delivery *service.DeliveryService
	Router   *handler.Router
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Transport
	tg, err := transport.NewTelegram(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize transport: %w", err)
	}

	// Repositories
	categoryRepository := repository.NewCategoryRepository(database)
	channelRepository := repository.NewChannelRepository(database)
	settingsRepository := repository.NewSettingsRepository(database)

	// Services
	categoryService := service.NewCategoryService(categoryRepository, tg.Me().Username)
	channelService := service.NewChannelService(channelRepository)
	timerService := service.NewTimerService(categoryRepository, settingsRepository)
	accessService := service.NewAccessService(tg)
	deliveryService := service.NewDeliveryService(tg)

	sessions := session.NewTracker()

	router := handler.NewRouter(
		tg,
		cfg.AdminIDs,
		sessions,
		categoryService,
		channelService,
		timerService,
		accessService,
		deliveryService,
	)

	return &App{
		Cfg:      cfg,
		DB:       database,
		Telegram: tg,
		Sessions: sessions,
		Delivery: deliveryService,
		Router:   router,
	}, nil
}

func (a *App) Close() error {
	a.Delivery.Shutdown()
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
