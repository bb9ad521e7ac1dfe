//go:build wireinject
// +build wireinject

package di

import (
	"marketplace/config"
	"marketplace/infras/gateway"
	"marketplace/infras/jwt"
	"marketplace/infras/kafka"
	"marketplace/infras/otel"
	"marketplace/infras/postgres"
	"marketplace/infras/redis"
	"marketplace/internal/jobs"
	"marketplace/internal/relay"
	"marketplace/permissions"
	"marketplace/shared/cache"
	"marketplace/transport/http"
	"marketplace/transport/http/middleware"
	"marketplace/transport/http/router"

	auctionRepository "marketplace/internal/domains/auction/repository"
	auctionService "marketplace/internal/domains/auction/service"
	bookingRepository "marketplace/internal/domains/booking/repository"
	bookingService "marketplace/internal/domains/booking/service"
	paymentRepository "marketplace/internal/domains/payment/repository"
	paymentService "marketplace/internal/domains/payment/service"
	userRepository "marketplace/internal/domains/user/repository"
	userService "marketplace/internal/domains/user/service"

	auctionHandler "marketplace/internal/handlers/auction"
	bookingHandler "marketplace/internal/handlers/booking"
	changeHandler "marketplace/internal/handlers/change"
	paymentHandler "marketplace/internal/handlers/payment"
	userHandler "marketplace/internal/handlers/user"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(postgres.Transactor), new(*postgres.Connection)),
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	gateway.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var relaySet = wire.NewSet(
	relay.NewPublisher,
	relay.NewHub,
	relay.NewConsumer,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var paymentDomain = wire.NewSet(
	paymentRepository.New,
	paymentService.New,
	wire.Bind(new(bookingService.Escrow), new(paymentService.Payment)),
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
	wire.Bind(new(auctionService.BookingCreator), new(bookingService.Booking)),
)

var auctionDomain = wire.NewSet(
	auctionRepository.NewAuction,
	auctionRepository.NewBid,
	auctionService.New,
)

var domains = wire.NewSet(
	userDomain,
	paymentDomain,
	bookingDomain,
	auctionDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	auctionHandler.New,
	bookingHandler.New,
	changeHandler.New,
	paymentHandler.New,
	userHandler.New,
	router.New,
)

func InitializeApp() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		relaySet,
		domains,
		routing,
		http.New,
		jobs.NewScheduler,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}

func InitializeReconciler() *Reconciler {
	wire.Build(
		config.Get,
		postgres.New,
		wire.Bind(new(postgres.Transactor), new(*postgres.Connection)),
		otel.New,
		redis.New,
		kafka.New,
		gateway.New,
		sharedHelpers,
		relay.NewPublisher,
		bookingRepository.New,
		paymentRepository.New,
		paymentService.New,
		jobs.NewScheduler,
		wire.Struct(new(Reconciler), "*"),
	)

	return &Reconciler{}
}
