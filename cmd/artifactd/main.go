package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"enginectl/internal/common/fsutil"
	"enginectl/internal/httpapi"
)

func main() {
	// Flags with environment variable defaults
	defaultAddr := ":8080"
	if v := os.Getenv("ARTIFACTD_ADDR"); v != "" {
		defaultAddr = v
	}
	defaultRoot := "~/artifacts"
	if v := os.Getenv("ARTIFACTD_ROOT"); v != "" {
		defaultRoot = v
	}
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	root := flag.String("root", defaultRoot, "Directory backing the artifact store")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
	httpapi.SetLogger(log)

	dir, err := fsutil.ExpandHome(*root)
	if err != nil {
		log.Fatal().Err(err).Msg("resolve store root")
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		log.Fatal().Err(err).Msg("create store root")
	}

	srv := &http.Server{Addr: *addr, Handler: httpapi.NewMux(dir)}

	go func() {
		log.Info().Str("addr", *addr).Str("root", dir).Msg("artifactd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
}
