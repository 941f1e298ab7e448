package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	auth := NewAuth(db, cfg.AdminSecret)
	if cfg.IssueToken {
		token, err := auth.IssueToken("admin", 0)
		if err != nil {
			log.Fatalf("issue token: %v", err)
		}
		fmt.Println(token)
		return
	}
	cfg.logSummary()

	analytics := NewAnalytics(db)

	rooms := NewRoomManager(cfg.MaxRooms, analytics)
	hub := NewHub(rooms)
	go hub.Run()

	mux := SetupRoutes(&Server{
		hub:       hub,
		analytics: analytics,
		auth:      auth,
		clientDir: cfg.ClientDir,
		publicURL: cfg.PublicURL,
	})

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		log.Printf("Serving client files from %s", cfg.ClientDir)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down...")
	server.Close()
	analytics.Stop()
}
