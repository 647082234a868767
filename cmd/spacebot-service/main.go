// cmd/spacebot-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spacebot/internal/auth"
	"spacebot/internal/dispatch"
	"spacebot/internal/space"
	"spacebot/internal/stackexchange"
	"spacebot/pkg/config"
	"spacebot/pkg/db"
	"spacebot/pkg/logger"
	"spacebot/pkg/middleware"
	"spacebot/pkg/registrations"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	pool := db.MustConnect(cfg, log)
	rdb := db.MustRedis(cfg, log)

	var store registrations.Store
	if pool != nil {
		store = registrations.NewPostgresStore(pool, log)
		if err := registrations.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
	} else {
		store = registrations.NewMemoryStore(log)
	}

	var cache auth.TokenCache
	if rdb != nil {
		cache = auth.NewRedisCache(rdb, log)
	} else {
		cache = auth.NewMemoryCache()
	}

	catalog, err := stackexchange.LoadCatalog(cfg.SitesFile)
	if err != nil {
		log.Fatalw("site catalog", "err", err)
	}
	if !catalog.HasSlug(cfg.DefaultSite) {
		log.Fatalw("default site not in catalog", "slug", cfg.DefaultSite)
	}

	httpClient := &http.Client{Timeout: cfg.ClientTimeout}
	authenticator := auth.NewAuthenticator(store, cache, httpClient, log)
	gateway := space.NewGateway(httpClient, log)
	searcher := stackexchange.NewSearcher(catalog, stackexchange.NewClient(cfg.StackAPIBaseURL, cfg.StackAPIKey, httpClient, log))
	dispatcher := dispatch.NewDispatcher(store, authenticator, gateway, searcher, catalog, cfg.DefaultSite, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(log))
	r.Use(middleware.Tracing())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	dispatcher.Routes(r)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Infow("spacebot-service listening", "addr", cfg.HTTPAddr, "defaultSite", cfg.DefaultSite, "sites", len(catalog.Sites()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("spacebot-service stopped")
}
