package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kirana/cart"
	"kirana/catalog"
	"kirana/dummyjson"
	"kirana/orders"
	"kirana/ratelim"
	"kirana/routes"
	"kirana/session"
	"kirana/store"
	"kirana/websock"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		duration := time.Since(start)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, duration)
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

// openStore picks the durable backend from the environment. The file
// backend is the default: one JSON file per collection under DATA_DIR.
func openStore(ctx context.Context) (store.Store, error) {
	switch os.Getenv("STORE_BACKEND") {
	case "redis":
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		return store.OpenRedis(ctx, addr, "kirana")
	case "mongo":
		uri := os.Getenv("MONGO_URI")
		if uri == "" {
			uri = "mongodb://localhost:27017"
		}
		return store.OpenMongo(ctx, uri, "kirana")
	default:
		dir := os.Getenv("DATA_DIR")
		if dir == "" {
			dir = "./data"
		}
		return store.OpenFile(dir)
	}
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to open store: %v", err)
	}
	defer st.Close()

	catalogRepo, err := catalog.NewRepository(ctx, st)
	if err != nil {
		log.Fatalf("❌ Failed to load products: %v", err)
	}
	cartAgg, err := cart.NewAggregate(ctx, st)
	if err != nil {
		log.Fatalf("❌ Failed to load cart: %v", err)
	}
	ledger, err := orders.NewLedger(ctx, st)
	if err != nil {
		log.Fatalf("❌ Failed to load orders: %v", err)
	}
	gate, err := session.NewGate(ctx, st)
	if err != nil {
		log.Fatalf("❌ Failed to load session: %v", err)
	}

	remote := dummyjson.NewClient(os.Getenv("CATALOG_BASE_URL"))
	rateLimiter := ratelim.NewRateLimiter()

	// hub mirrors store changes out to connected clients; it needs its own
	// handle so writes made through the main handle still reach it
	hubStore, err := openStore(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to open store for sync hub: %v", err)
	}
	defer hubStore.Close()
	hub := websock.NewHub(hubStore)
	go hub.Run()

	router := httprouter.New()
	router.GET("/health", Index)
	routes.AddAuthRoutes(router, session.NewHandler(gate), rateLimiter)
	routes.AddProductRoutes(router, catalog.NewHandler(catalogRepo))
	routes.AddCatalogRoutes(router, dummyjson.NewHandler(remote))
	routes.AddCartRoutes(router, cart.NewHandler(cartAgg))
	routes.AddOrderRoutes(router, orders.NewHandler(ledger, cartAgg), rateLimiter)
	routes.AddSyncRoutes(router, hub)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Println("🛑 Shutting down sync hub...")
		hub.Stop()
		catalogRepo.Close()
		cartAgg.Close()
		ledger.Close()
		gate.Close()
	})

	go func() {
		log.Printf("🚀 Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
