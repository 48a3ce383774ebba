package main

import (
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-password/password"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"moontv/api"
	"moontv/config"
	"moontv/handlers"
	"moontv/services/accounts"
	"moontv/services/metadata"
	"moontv/services/playback"
	"moontv/services/sessions"
	"moontv/utils"
)

func main() {
	settingsPath := flag.String("config", "config.json", "path to the settings file")
	flag.Parse()

	cfg := config.NewManager(*settingsPath)
	if err := cfg.Load(); err != nil {
		log.Fatalf("[main] load settings: %v", err)
	}
	settings := cfg.Get()

	if settings.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   settings.LogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		}))
	}

	sessionsSvc, err := sessions.NewService(filepath.Join(settings.DataDir, "sessions"), sessions.DefaultSessionDuration)
	if err != nil {
		log.Fatalf("[main] init sessions: %v", err)
	}
	accountsSvc, err := accounts.NewService(filepath.Join(settings.DataDir, "accounts"))
	if err != nil {
		log.Fatalf("[main] init accounts: %v", err)
	}
	if accountsSvc.Count() == 0 {
		adminPassword := os.Getenv("MOONTV_ADMIN_PASSWORD")
		generated := false
		if adminPassword == "" {
			adminPassword, err = password.Generate(20, 5, 0, false, false)
			if err != nil {
				log.Fatalf("[main] generate admin password: %v", err)
			}
			generated = true
		}
		if _, err := accountsSvc.Create("admin", adminPassword); err != nil {
			log.Fatalf("[main] create admin account: %v", err)
		}
		if generated {
			log.Printf("[main] created admin account with generated password: %s", adminPassword)
		} else {
			log.Printf("[main] created admin account from MOONTV_ADMIN_PASSWORD")
		}
	}

	playbackSvc := playback.NewService(cfg)
	metadataSvc := metadata.NewService(settings.Metadata, nil)
	tracker := handlers.NewPlayTracker()

	playHandler := handlers.NewPlayHandler(playbackSvc, sessionsSvc, tracker)
	detailHandler := handlers.NewDetailHandler(metadataSvc)
	authHandler := handlers.NewAuthHandler(accountsSvc, sessionsSvc)

	// 5 attempts per minute per IP on login
	loginLimiter := api.NewIPRateLimiter(rate.Every(12*time.Second), 5)

	r := utils.NewRouter()
	r.HandleFunc("/play/{token}", playHandler.Play).Methods(http.MethodGet)
	r.Handle("/api/login", loginLimiter.Limit(http.HandlerFunc(authHandler.Login))).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", authHandler.Logout).Methods(http.MethodPost)
	r.HandleFunc("/api/me", authHandler.Me).Methods(http.MethodGet)
	r.HandleFunc("/api/detail", detailHandler.Detail).Methods(http.MethodGet)
	r.HandleFunc("/api/detail/batch", detailHandler.BatchDetail).Methods(http.MethodPost)

	admin := r.PathPrefix("/api/playback").Subrouter()
	admin.Use(api.SessionMiddleware(sessionsSvc))
	admin.HandleFunc("/recent", tracker.ServeRecent).Methods(http.MethodGet)

	server := &http.Server{
		Addr:              settings.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[main] listening on %s", settings.ListenAddr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("[main] server: %v", err)
	}
}
