package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lfca/church-admin-be/internal/assist"
	"github.com/lfca/church-admin-be/internal/auth"
	"github.com/lfca/church-admin-be/internal/blob"
	"github.com/lfca/church-admin-be/internal/cache"
	"github.com/lfca/church-admin-be/internal/config"
	"github.com/lfca/church-admin-be/internal/server"
	"github.com/lfca/church-admin-be/internal/session"
	postgres "github.com/lfca/church-admin-be/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer store.Close()

	entityCache := cache.New(store)
	if err := entityCache.Init(ctx); err != nil {
		log.Fatalf("load collections: %v", err)
	}
	go listenChanges(ctx, store, entityCache)

	provider := auth.NewProvider(store)
	sessions := session.NewStore(ctx, provider)
	defer sessions.Close()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	deps := server.Deps{
		Cache:    entityCache,
		Sessions: sessions,
		Users:    store,
		Tokens:   tokens,
	}
	if cfg.GeminiAPIKey != "" {
		deps.Assist = assist.NewClient(cfg.GeminiAPIKey)
	} else {
		log.Println("GEMINI_API_KEY unset; assist endpoints disabled")
	}
	if cfg.PhotoBucket != "" {
		photos, err := blob.New(ctx, blob.Config{
			Bucket:   cfg.PhotoBucket,
			Region:   cfg.PhotoRegion,
			Endpoint: cfg.PhotoEndpoint,
		})
		if err != nil {
			log.Fatalf("init photo storage: %v", err)
		}
		deps.Photos = photos
	} else {
		log.Println("PHOTO_S3_BUCKET unset; photo upload disabled")
	}

	srv := server.New(cfg, deps)

	go func() {
		log.Printf("church admin backend listening on %s", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

// listenChanges keeps the change feed attached for the life of the process,
// backing off and reconnecting when the listening connection drops.
func listenChanges(ctx context.Context, store *postgres.Store, entityCache *cache.Cache) {
	for {
		err := store.ListenChanges(ctx, func(table string) {
			if err := entityCache.HandleTableChange(ctx, table); err != nil {
				log.Printf("change feed refetch %s: %v", table, err)
			}
		})
		if ctx.Err() != nil {
			return
		}
		log.Printf("change feed disconnected: %v; reconnecting", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
