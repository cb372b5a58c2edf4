// Command fakeapi serves a seeded in-memory Dokan Load API for local
// development and demos.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/dmitrijs2005/dokanload/internal/fakeapi"
	"github.com/dmitrijs2005/dokanload/internal/logging"
)

func main() {
	addr := flag.String("a", "127.0.0.1:8080", "listen address")
	prefix := flag.String("prefix", "/api", "route prefix")
	secret := flag.String("secret", "dokan-dev-secret", "token signing secret")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	level := flag.String("l", "info", "log level")
	flag.Parse()

	srv := fakeapi.New(fakeapi.Options{
		Prefix:   *prefix,
		Secret:   []byte(*secret),
		TokenTTL: *ttl,
		Logger:   logging.New(os.Stderr, *level),
	})
	if err := fakeapi.Seed(srv); err != nil {
		log.Fatalf("seed: %v", err)
	}

	go func() {
		log.Printf("fake api listening on http://%s%s", *addr, *prefix)
		if err := srv.Start(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
