package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Fake Lavalink node for supervisor tests. Binds the Spring-style
// SERVER_ADDRESS/SERVER_PORT environment the supervisor sets and answers
// /version. FAKE_NODE_FAIL exits early; FAKE_NODE_HANG never binds.
func main() {
	flag.String("jar", "", "ignored; accepted so 'java -jar x.jar' argv parses")
	flag.Parse()

	if os.Getenv("FAKE_NODE_FAIL") == "1" {
		fmt.Fprintln(os.Stderr, "bad config: refusing to boot")
		os.Exit(3)
	}
	if os.Getenv("FAKE_NODE_HANG") == "1" {
		time.Sleep(time.Hour)
	}

	host := os.Getenv("SERVER_ADDRESS")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("SERVER_PORT")
	password := os.Getenv("LAVALINK_SERVER_PASSWORD")

	mux := http.NewServeMux()
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		if password != "" && r.Header.Get("Authorization") != password {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("4.0.8"))
	})

	srv := &http.Server{Addr: host + ":" + port, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
