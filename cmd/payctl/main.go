package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lykerclassy/lipana-mpesa-integration/internal/client"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/config"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/logger"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/poller"
)

// payctl plays the storefront: it submits one payment and polls the status
// endpoint until the customer confirms or the flow fails. Run it again for a
// fresh attempt.
func main() {
	log, cleanup := logger.NewLogger()
	defer cleanup()

	cfg, err := config.LoadClient()
	if err != nil {
		log.Error("failed to load configuration", logger.ErrorField("error", err))
		os.Exit(1)
	}

	phone := flag.String("phone", "", "customer phone number, e.g. +254700000000")
	amount := flag.Float64("amount", 0, "amount to collect in KES")
	baseURL := flag.String("base-url", cfg.BaseURL, "merchant backend base URL")
	interval := flag.Duration("interval", cfg.PollInterval, "status poll interval")
	maxAttempts := flag.Int("max-attempts", cfg.MaxAttempts, "poll attempts before giving up")
	flag.Parse()

	if *phone == "" || *amount <= 0 {
		fmt.Fprintln(os.Stderr, "usage: payctl -phone +254700000000 -amount 100")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("interrupted, tearing down")
		cancel()
	}()

	api := client.New(*baseURL)
	p := poller.New(api, log, *interval, *maxAttempts)

	fmt.Println("Sending payment prompt, check your phone...")
	start := time.Now()
	state, err := p.Run(ctx, *phone, *amount)
	elapsed := time.Since(start).Round(time.Second)

	switch {
	case state == poller.StateSuccess:
		fmt.Printf("Payment successful (transaction %s, took %s)\n", p.TransactionID(), elapsed)
	case err != nil:
		fmt.Printf("Payment failed: %v\n", err)
		os.Exit(1)
	default:
		fmt.Println("Payment failed or was cancelled by the customer.")
		os.Exit(1)
	}
}
