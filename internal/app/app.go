// Package app assembles repositories, services and handlers from configuration.
package app

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/config"
	cataloghttp "github.com/Skotchmaster/storefront/internal/catalog/httpserver"
	catalogrepo "github.com/Skotchmaster/storefront/internal/catalog/repo"
	"github.com/Skotchmaster/storefront/internal/catalog/search"
	catalogservice "github.com/Skotchmaster/storefront/internal/catalog/service"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	orderhttp "github.com/Skotchmaster/storefront/internal/order/httpserver"
	orderrepo "github.com/Skotchmaster/storefront/internal/order/repo"
	orderservice "github.com/Skotchmaster/storefront/internal/order/service"
	"github.com/Skotchmaster/storefront/internal/outbox"
	"github.com/Skotchmaster/storefront/internal/payment/gateway"
	paymenthttp "github.com/Skotchmaster/storefront/internal/payment/httpserver"
	paymentservice "github.com/Skotchmaster/storefront/internal/payment/service"
)

type App struct {
	Config   config.Config
	DB       *gorm.DB
	Catalog  *catalogservice.CatalogService
	Orders   *orderservice.OrderService
	Payments *paymentservice.PaymentService
	Outbox   *outbox.GormRepo
}

// Build wires the services. gw may be nil, in which case a gateway client is
// built from cfg.Gateway.
func Build(cfg config.Config, db *gorm.DB, idx search.Index, gw paymentservice.Gateway) *App {
	if idx == nil {
		idx = search.Noop{}
	}
	if gw == nil {
		gw = gateway.NewClient(gateway.Config{
			BaseURL:   cfg.Gateway.BaseURL,
			KeyID:     cfg.Gateway.KeyID,
			KeySecret: cfg.Gateway.KeySecret,
			Timeout:   cfg.Gateway.Timeout,
		})
	}

	catalogRepo := &catalogrepo.GormRepo{DB: db}
	outboxRepo := &outbox.GormRepo{DB: db}

	orders := &orderservice.OrderService{
		Repo:    &orderrepo.GormRepo{DB: db},
		Catalog: catalogRepo,
		Outbox:  outboxRepo,
		Topic:   cfg.Kafka.Topic,
	}

	return &App{
		Config:  cfg,
		DB:      db,
		Catalog: &catalogservice.CatalogService{Repo: catalogRepo, Index: idx},
		Orders:  orders,
		Payments: &paymentservice.PaymentService{
			Gateway:   gw,
			KeySecret: []byte(cfg.Gateway.KeySecret),
			Currency:  cfg.Gateway.Currency,
			Orders:    orders,
		},
		Outbox: outboxRepo,
	}
}

func (a *App) Handler(logger *slog.Logger) *echo.Echo {
	return httpserver.New(&httpserver.Deps{
		DB:             a.DB,
		Logger:         logger,
		JWTSecret:      a.Config.JWTSecret,
		CatalogHandler: &cataloghttp.CatalogHTTP{Svc: a.Catalog},
		OrderHandler:   &orderhttp.OrderHTTP{Svc: a.Orders},
		PaymentHandler: &paymenthttp.PaymentHTTP{Svc: a.Payments},
	})
}

func (a *App) Relay(pub outbox.Publisher) *outbox.Relay {
	return &outbox.Relay{
		Repo:      a.Outbox,
		Publisher: pub,
		Interval:  a.Config.OutboxInterval,
	}
}
