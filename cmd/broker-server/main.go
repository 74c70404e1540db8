package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/V-ini-t86/broker-platform/internal/auth"
	"github.com/V-ini-t86/broker-platform/internal/broker"
	"github.com/V-ini-t86/broker-platform/internal/config"
	"github.com/V-ini-t86/broker-platform/internal/domain"
	"github.com/V-ini-t86/broker-platform/internal/feed"
	"github.com/V-ini-t86/broker-platform/internal/httpapi"
	"github.com/V-ini-t86/broker-platform/internal/intent"
	"github.com/V-ini-t86/broker-platform/internal/marketdata"
	"github.com/V-ini-t86/broker-platform/internal/orderpad"
	"github.com/V-ini-t86/broker-platform/internal/portfolio"
	"github.com/V-ini-t86/broker-platform/internal/session"
	"github.com/V-ini-t86/broker-platform/internal/storage"
	"github.com/V-ini-t86/broker-platform/internal/store"
	"github.com/V-ini-t86/broker-platform/internal/util"
)

func main() {
	cfgPath := "config/broker-platform.yaml"
	if p := os.Getenv("BROKER_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)

	// Session persistence.
	var kv storage.KV
	switch cfg.Storage.SessionBackend {
	case "sqlite":
		skv, err := storage.NewSQLiteKV(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening session store: %v", err)
		}
		defer skv.Close()
		kv = skv
	default:
		fkv, err := storage.NewFileKV(cfg.Storage.SessionPath)
		if err != nil {
			log.Fatalf("opening session store: %v", err)
		}
		kv = fkv
	}
	sessions := session.NewStore(kv, logger)
	sessions.Restore()

	// Credential validation.
	var creds auth.CredentialService
	if cfg.Auth.URL != "" {
		creds = auth.NewHTTPService(cfg.Auth.URL)
	} else {
		creds = auth.NewStaticService()
	}

	// Market data.
	var quotes marketdata.QuoteSource
	switch cfg.MarketData.Source {
	case "alpaca":
		quotes = marketdata.NewAlpacaSource(
			cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
			cfg.MarketData.RatePerMin)
	default:
		quotes = marketdata.NewStaticSource(
			time.Duration(cfg.MarketData.LatencyMS) * time.Millisecond)
	}

	// Order persistence.
	orders, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening order store: %v", err)
	}
	defer orders.Close()
	ticks := store.NewParquetStore(cfg.Storage.DataDir)

	// Execution backend.
	var brk broker.Broker
	switch cfg.Execution.Broker {
	case "alpaca":
		brk = broker.NewAlpacaBroker(
			cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL, orders)
	default:
		brk = broker.NewSimulatorBroker(orders, logger)
	}
	logger.Info("execution backend selected", "broker", brk.Name())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Order pad.
	intents := intent.NewStore()
	pad := orderpad.NewController(intents, quotes, brk, cfg.MarketData.DefaultPrice, logger)
	go pad.Run(ctx)

	// Order-book feed, seeded from the quote source.
	prices := make(map[string]float64, len(cfg.MarketData.Symbols))
	for _, sym := range cfg.MarketData.Symbols {
		quote, err := quotes.GetQuote(ctx, sym.Symbol)
		if err != nil {
			logger.Warn("seeding feed price failed, using default",
				"symbol", sym.Symbol, "error", err)
			quote.Price = cfg.MarketData.DefaultPrice
		}
		prices[sym.Symbol] = quote.Price
	}
	opts := feed.Options{
		Interval:  time.Duration(cfg.Feed.IntervalMS) * time.Millisecond,
		Depth:     cfg.Feed.Depth,
		MaxTrades: cfg.Feed.Trades,
	}
	if cfg.Feed.Record {
		opts.Recorder = ticks
	}
	bookFeed := feed.New(prices, opts, logger)
	go bookFeed.Run(ctx)

	brokers := make([]domain.BrokerInfo, len(cfg.Brokers))
	for i, b := range cfg.Brokers {
		brokers[i] = domain.BrokerInfo{ID: b.ID, Name: b.Name, Description: b.Description}
	}

	source := portfolio.NewStaticSource(time.Duration(cfg.MarketData.LatencyMS) * time.Millisecond)
	var positions portfolio.PositionsSource = source
	if cfg.Execution.Broker == "alpaca" {
		positions = brokerPositions{brk}
	}

	api := httpapi.NewDashboardServer(sessions, creds, intents, pad,
		source, positions, orders, ticks, bookFeed, brokers, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // streaming endpoint holds connections open
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("broker-server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}
}

// brokerPositions adapts a broker.Broker to the positions view.
type brokerPositions struct {
	b broker.Broker
}

func (p brokerPositions) GetPositions(ctx context.Context) ([]domain.Position, error) {
	return p.b.GetPositions(ctx)
}
