package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/thebestitaly/mapyourfriends-emergent/devserver/geo"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/handlers"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/session"
	"github.com/thebestitaly/mapyourfriends-emergent/devserver/store"
	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8001"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	st := openStore(ctx)
	defer st.Close(context.Background())

	// Geocoding
	geocoder := geo.NewGeocoder(openGazetteer(ctx))

	// Identity
	identity := openIdentity()

	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		allowedOrigins = strings.Split(v, ",")
	}

	router := handlers.NewRouter(handlers.Deps{
		Store:          st,
		Sessions:       session.NewManager(st, jwtSecret),
		Identity:       identity,
		Geocoder:       geocoder,
		AllowedOrigins: allowedOrigins,
	})

	srv := &http.Server{Addr: ":" + port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on :%s", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// openStore uses MongoDB when MONGODB_URI is set and an in-memory store otherwise.
func openStore(ctx context.Context) store.Store {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Println("MONGODB_URI not set, using in-memory store")
		return store.NewMemoryStore()
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "mapyourfriends"
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	s, err := store.NewMongoStore(connectCtx, mongoURI, dbName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	return s
}

// openGazetteer seeds Redis when REDIS_ADDR is set and keeps the cities in memory otherwise.
func openGazetteer(ctx context.Context) geo.Gazetteer {
	cities, err := loadCities()
	if err != nil {
		log.Fatalf("Failed to load cities: %v", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		log.Println("REDIS_ADDR not set, using in-memory gazetteer")
		return geo.NewMemoryGazetteer(cities)
	}
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		redisDB, err = strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid REDIS_DB value: %v", err)
		}
	}
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis")

	g := geo.NewRedisGazetteer(client)
	if err := g.Seed(ctx, cities); err != nil {
		log.Fatalf("Failed to seed cities: %v", err)
	}
	return g
}

func loadCities() ([]models.City, error) {
	if path := os.Getenv("CITIES_FILE"); path != "" {
		return geo.LoadCities(path)
	}
	return geo.DefaultCities()
}

// openIdentity prefers a remote identity service, then the DEV_IDENTITIES table.
func openIdentity() session.Provider {
	if url := os.Getenv("IDENTITY_URL"); url != "" {
		return &session.HTTPProvider{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
	}
	p, err := session.ParseStaticProvider(os.Getenv("DEV_IDENTITIES"))
	if err != nil {
		log.Fatalf("Invalid DEV_IDENTITIES: %v", err)
	}
	if len(p) == 0 {
		log.Println("No identities configured; session exchange will reject every session_id")
	}
	return p
}
