package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/cart"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/catalog"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/commerce"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/config"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/contact"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/countdown"
	h "github.com/smoothdescentinc/SmoothDescent-sub000/internal/http"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/ratelimit"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/storage"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/tracking"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Durable visitor storage and the contact rate limiter share Redis when
	// it is configured.
	var store storage.Store = storage.NewMemoryStore()
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		store = storage.NewRedisStore(redisClient, cfg.VisitorStateTTL)
		limiter = ratelimit.NewRedisLimiter(redisClient, "contact", cfg.ContactRateLimit, cfg.ContactRateWindow)
		log.Printf("visitor state in redis at %s", cfg.RedisAddr)
	} else {
		memLimiter := ratelimit.NewMemoryLimiter(cfg.ContactRateLimit, cfg.ContactRateWindow)
		go memLimiter.Run(ctx)
		limiter = memLimiter
	}

	var contactRepo contact.Repository = contact.NewMemoryRepository()
	if cfg.MongoURI != "" {
		repo, disconnect, err := contact.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("failed to open contact store: %v", err)
		}
		defer func() {
			if err := disconnect(context.Background()); err != nil {
				log.Printf("mongo disconnect error: %v \n", err)
			}
		}()
		contactRepo = repo
	}

	var sink tracking.Sink = tracking.LogSink{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := tracking.NewKafkaSink(cfg.TrackingTopic, cfg.KafkaBrokers...)
		defer kafkaSink.Close()
		sink = kafkaSink
	}
	gateway := tracking.NewGateway(sink, store, 5*time.Second)

	// Without usable credentials everything runs in mock mode.
	var client commerce.Client
	if commerce.IsConfigured(cfg.CommerceDomain, cfg.CommerceToken) {
		gql, err := commerce.NewGraphQLClient(commerce.Config{
			Domain:     cfg.CommerceDomain,
			Token:      cfg.CommerceToken,
			APIVersion: cfg.CommerceAPIVersion,
			Timeout:    cfg.CommerceTimeout,
		})
		if err != nil {
			log.Fatalf("failed to create commerce client: %v", err)
		}
		client = commerce.NewBreakerClient(gql, "commerce")
		log.Printf("commerce backend at %s", cfg.CommerceDomain)
	} else {
		log.Println("commerce credentials missing, running in mock mode")
	}

	static, err := catalog.StaticProducts()
	if err != nil {
		log.Fatalf("failed to load static catalog: %v", err)
	}
	products := catalog.NewStore(client, static)
	go products.Fetch(ctx)

	carts := cart.NewRegistry(cart.Deps{
		Client:  client,
		Storage: store,
		Tracker: gateway,
		Catalog: products,
	})
	go carts.Run(ctx)

	contacts := contact.NewService(contactRepo, limiter, gateway)
	timer := countdown.NewTimer(store, cfg.CountdownVersion, cfg.CountdownDuration)

	router := h.NewRouter(h.RouterConfig{
		VisitorCookie:      cfg.VisitorCookie,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}, h.Handlers{
		Products: h.NewProductHandler(products, gateway, cfg.RequestTimeout),
		Cart:     h.NewCartHandler(carts, products, gateway, cfg.FreeShippingThreshold, cfg.RequestTimeout),
		Quiz:     h.NewQuizHandler(products, gateway),
		Visitor:  h.NewVisitorHandler(gateway, timer, cfg.RequestTimeout),
		Contact:  h.NewContactHandler(contacts, cfg.RequestTimeout),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	gateway.Wait()

	log.Println("server exited")
}
