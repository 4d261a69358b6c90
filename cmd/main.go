package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gitlab.com/civicworks/tenderengine/internal/config"
	"gitlab.com/civicworks/tenderengine/internal/handlers/httphandlers"
	"gitlab.com/civicworks/tenderengine/internal/journal"
	"gitlab.com/civicworks/tenderengine/internal/lib"
	"gitlab.com/civicworks/tenderengine/internal/storage"
	"gitlab.com/civicworks/tenderengine/internal/tender/eligibility"
	"gitlab.com/civicworks/tenderengine/internal/tender/engine"
	"gitlab.com/civicworks/tenderengine/internal/tender/ledger"
	"gitlab.com/civicworks/tenderengine/internal/tender/registry"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	err := config.LoadConfig(&cfg, &os.Args)
	if err != nil {
		panic(err)
	}

	logFilePath := ""
	if cfg.Log.LogToFile {
		logFilePath = "tenderengine.log"
	}
	log, err := lib.NewLogger(cfg.Log.Level, cfg.Log.Color, cfg.Log.IsJSON, logFilePath)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, cancel := context.WithCancel(context.Background())

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-shutdownChan
		log.Warnf("received signal: %s", s)
		cancel()

		s = <-shutdownChan
		log.Warnf("received signal: %s, forcing exit", s)
		os.Exit(1)
	}()

	store := storage.NewStorage()
	reg := registry.NewRegistry(store, log.Named("REGISTRY"))
	ldg := ledger.NewLedger(store, log.Named("LEDGER"))
	gate := eligibility.NewGate(log.Named("ELIGIBILITY"))
	jrn := journal.NewJournal(cfg.Journal.Capacity)

	eng := engine.NewEngine(engine.Config{
		QualityThreshold:     cfg.Engine.QualityThreshold,
		MilestoneSlices:      cfg.Engine.MilestoneSlices,
		SequentialMilestones: cfg.Engine.SequentialMilestones,
	}, store, reg, ldg, gate, jrn, log.Named("ENGINE"))

	publicUrl, _ := url.Parse(cfg.Web.PublicUrl)
	router := httphandlers.NewHTTPHandler(eng, publicUrl, log.Named("HTTP"))

	server := &http.Server{
		Addr:    cfg.Web.Address,
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("http server is listening: %s", cfg.Web.Address)
		err := server.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Infof("app exited due to %s", err)
}
