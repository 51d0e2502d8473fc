package main

import (
	"context"
	"os"
	"time"

	"oifit/internal/config"
	"oifit/internal/domain/cart"
	"oifit/internal/handler"
	"oifit/internal/infra/cache"
	"oifit/internal/infra/cartstorage"
	"oifit/internal/infra/db"
	"oifit/internal/infra/messaging"
	infraRepo "oifit/internal/infra/repository"
	"oifit/internal/logger"
	"oifit/internal/payment"
	"oifit/internal/server"
	"oifit/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	//.envは開発用。本番は環境変数のみ
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") == "prod" {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.GoEnv, cfg.LogLevel)

	//DB接続
	gormDB, err := db.Connect(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	salesRepo := infraRepo.NewSalesGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//Redis（なければメモリ）
	var (
		idem    usecase.IdempotencyCache
		dedupe  usecase.EventDeduper
		storage usecase.CartStorageFactory
	)
	if cfg.RedisAddr != "" {
		rdb := cache.NewRedisClient(cfg.RedisAddr)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping")
		}
		cancel()
		idem = cache.NewIdempotencyStore(rdb)
		dedupe = cache.NewEventDeduper(rdb)
		storage = func(userID string) cart.Storage {
			return cartstorage.NewRedisStorage(rdb, userID)
		}
	} else {
		log.Warn().Msg("REDIS_ADDR not set: carts kept in memory, idempotency falls back to db")
		slots := cartstorage.NewMemorySlots()
		storage = func(userID string) cart.Storage {
			return slots.For(userID)
		}
	}

	//Kafka（なければログ出力）
	var events messaging.Publisher
	if cfg.KafkaBrokers != "" {
		w := messaging.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer w.Close()
		events = messaging.NewKafkaPublisher(w)
	} else {
		events = messaging.NewLogPublisher(log)
	}

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	//Usecase生成
	userUC := usecase.NewUserUsecase(userRepo, addressRepo, orderRepo, auditRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	productUC := usecase.NewProductUsecase(txm, productRepo, categoryRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(productRepo, storage, log)
	orderUC := usecase.NewOrderUsecase(txm)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, events, log)
	auditUC := usecase.NewAuditUsecase(auditRepo)
	salesUC := usecase.NewSalesUsecase(salesRepo, gateway, cfg.StoreCurrency, log)
	paymentUC := usecase.NewPaymentUsecase(usecase.PaymentDeps{
		Tx:        txm,
		Orders:    orderRepo,
		Products:  productRepo,
		Addresses: addressRepo,
		Gateway:   gateway,
		Cache:     idem,
		Dedupe:    dedupe,
		Events:    events,
		Carts:     cartUC,
		Currency:  cfg.StoreCurrency,
	}, log)

	//Handler生成
	h := server.Handlers{
		Products:      handler.NewProductHandler(productUC),
		Users:         handler.NewUserHandler(userUC),
		Addresses:     handler.NewAddressHandler(addressUC),
		Cart:          handler.NewCartHandler(cartUC),
		Payment:       handler.NewPaymentHandler(paymentUC),
		Orders:        handler.NewOrderHandler(orderUC),
		AdminOrders:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminProducts: handler.NewAdminProductHandler(productUC),
		AdminUsers:    handler.NewAdminUserHandler(userUC, salesUC),
		AdminAudit:    handler.NewAdminAuditHandler(auditUC),
	}

	e := server.New(cfg, log, userUC, h)

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	if err := server.Start(e, addr, log); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
	log.Info().Msg("server stopped")
}
