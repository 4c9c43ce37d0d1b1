package server

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	log "github.com/sirupsen/logrus"

	"CampusReady-backend/internal/database"
	"CampusReady-backend/internal/matchcache"
	"CampusReady-backend/internal/notification"
)

// MyServer bundles the dependencies every route handler needs
type MyServer struct {
	port int

	DB       *database.DBinstanceStruct
	Cache    *matchcache.Cache
	Notifier notification.Notifier
}

// NewServer construct new Server instance
func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialize: %s", err)
	}

	s := &MyServer{
		port:  port,
		DB:    db,
		Cache: matchcache.New(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD")),
		Notifier: &notification.SMTPNotifier{
			From:       os.Getenv("SMTP_FROM"),
			User:       os.Getenv("SMTP_USER"),
			Password:   os.Getenv("SMTP_PASSWORD"),
			Host:       os.Getenv("SMTP_HOST"),
			Port:       os.Getenv("SMTP_PORT"),
			TLSEnabled: os.Getenv("SMTP_TLS") == "true",
		},
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
