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

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/config"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/events"
	handler "github.com/sfdify01/template-yoga-studio-web-sub001/internal/http"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/logger"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/notify"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/payment"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/pricing"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/promo"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/repo"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		zlog.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		zlog.Fatal("failed to ping database", zap.Error(err))
	}
	zlog.Info("connected to database")

	if err := repo.RunMigrations(db, cfg.Database.MigrationsPath); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}
	zlog.Info("migrations applied")

	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		zlog.Fatal("invalid redis url", zap.Error(err))
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		zlog.Fatal("failed to ping redis", zap.Error(err))
	}
	zlog.Info("connected to redis")

	menuRepo := repo.NewPostgresMenuRepository(db)
	orderRepo := repo.NewPostgresOrderRepository(db)
	customerRepo := repo.NewPostgresCustomerRepository(db)
	loyaltyRepo := repo.NewPostgresLoyaltyRepository(db)
	promoRepo := repo.NewPostgresPromoRepository(db)
	zoneRepo := repo.NewPostgresZoneRepository(db)
	newsRepo := repo.NewPostgresNewsletterRepository(db)

	promoValidator := promo.NewValidator(promoRepo)
	if err := promoValidator.Load(context.Background()); err != nil {
		zlog.Fatal("failed to load promo codes", zap.Error(err))
	}

	publisher := events.NewRedisPublisher(redisClient)
	paymentClient := payment.NewHTTPClient(cfg.Payment.GatewayURL, cfg.Payment.APIKey)

	menuService := service.NewMenuService(menuRepo, redisClient,
		time.Duration(cfg.Store.MenuCacheSeconds)*time.Second)
	deliveryService := service.NewDeliveryService(zoneRepo, cfg.Store.Lat, cfg.Store.Lon)
	loyaltyService := service.NewLoyaltyService(loyaltyRepo, service.LoyaltyRates{
		EarnRate:           cfg.Loyalty.EarnRate,
		RedeemCentsPerStar: cfg.Loyalty.RedeemCentsPerStar,
		ReferralBonusStars: cfg.Loyalty.ReferralBonusStars,
	})
	orderService := service.NewOrderService(
		orderRepo, menuRepo, customerRepo,
		loyaltyService, deliveryService, promoValidator,
		paymentClient, publisher,
		pricing.Params{
			TaxRate:         cfg.Store.TaxRate,
			ServiceFeeCents: cfg.Store.ServiceFeeCents,
			ServiceFeePct:   cfg.Store.ServiceFeePct,
		},
		cfg.Store.Currency,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notifier notify.Notifier
	if cfg.Push.AppID != "" {
		notifier = notify.NewPushClient(cfg.Push.URL, cfg.Push.AppID, cfg.Push.APIKey)
	}
	consumer := events.NewConsumer(redisClient, orderService, loyaltyService, notifier, zlog)
	go consumer.Subscribe(ctx, events.OrderPaidChannel)

	h := handler.NewHandler(menuService, orderService, loyaltyService, deliveryService,
		customerRepo, promoRepo, promoValidator, newsRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(zlog))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h.RegisterRoutes(r, handler.APIKeyAuth(cfg.Admin.APIKeyHashes))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		zlog.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		zlog.Warn("error closing redis connection", zap.Error(err))
	}

	zlog.Info("server exiting")
}
