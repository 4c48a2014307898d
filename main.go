package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-engine/config"
	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/ledger"
	"auction-engine/internal/lifecycle"
	"auction-engine/internal/notifier"
	"auction-engine/internal/server"
	"auction-engine/internal/store"
	"auction-engine/utils"
)

func main() {
	cfg := config.Load()

	auctionStore := store.NewMemoryStore()
	bidLedger := ledger.NewMemoryLedger()

	events := notifier.NewBroadcaster(cfg.Auction.EventBufferSize)
	events.Start()

	biddingSvc := bidding.NewBiddingService(auctionStore, bidLedger, events,
		bidding.WithMaxAttempts(cfg.Auction.MaxBidAttempts))

	manager := lifecycle.NewManager(auctionStore, bidLedger, events, cfg.Auction.SweepInterval)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go manager.Run(sweepCtx)

	router := server.SetupRouter(biddingSvc, manager, events)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		utils.Info("Starting auction server", map[string]any{"port": cfg.Server.Port, "env": cfg.Server.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("Failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Info("Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("Server shutdown failed", map[string]any{"error": err.Error()})
	}

	stopSweep()
	events.Close()
	utils.Info("Shutdown complete", nil)
}
