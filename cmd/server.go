package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcorbin/vigil/config"
	"github.com/mcorbin/vigil/internal/database"
	"github.com/mcorbin/vigil/internal/filestore"
	"github.com/mcorbin/vigil/internal/http"
	"github.com/mcorbin/vigil/internal/http/handlers"
	"github.com/mcorbin/vigil/internal/notification"
	"github.com/mcorbin/vigil/internal/probe"
	"github.com/mcorbin/vigil/internal/scheduler"
	"github.com/mcorbin/vigil/internal/util"
	"github.com/mcorbin/vigil/pkg/history"
	"github.com/mcorbin/vigil/pkg/monitor"
	"github.com/mcorbin/vigil/pkg/monitor/aggregates"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultDataDirectory = "data"

func buildServerCmd(logger *slog.Logger) *cobra.Command {
	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Runs the monitoring server",
		Run: func(cmd *cobra.Command, args []string) {
			err := runServer(logger)
			if err != nil {
				logger.Error(err.Error())
				os.Exit(2)
			}

		},
	}
	return serverCmd
}

func buildRecordStore(logger *slog.Logger, config config.Configuration) (history.RecordStore, error) {
	if config.Database != nil {
		return database.New(logger, *config.Database)
	}
	directory := config.Monitor.DataDirectory
	if directory == "" {
		directory = defaultDataDirectory
	}
	return filestore.New(logger, directory)
}

func runServer(logger *slog.Logger) error {
	file, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("fail to read configuration file: %w", err)
	}
	var config config.Configuration
	if err := yaml.Unmarshal(file, &config); err != nil {
		return fmt.Errorf("fail to parse yaml configuration file: %w", err)
	}
	options, err := config.Monitor.Options()
	if err != nil {
		return err
	}
	shutdownTracing, err := setupTracing(context.Background(), config.OTLPEndpoint)
	if err != nil {
		return err
	}
	records, err := buildRecordStore(logger, config)
	if err != nil {
		return err
	}
	historyStore := history.NewStore(logger, records, options.RetentionWindow)
	endpoints := []aggregates.Endpoint{}
	now := time.Now().UTC()
	for _, endpoint := range config.Monitor.Endpoints {
		endpoints = append(endpoints, aggregates.Endpoint{
			ID:   util.NewUUID(),
			Name: endpoint.Name,
			URL:  endpoint.URL,
		})
		historyStore.Load(context.Background(), endpoint.URL, now)
	}
	var sink monitor.NotificationSink
	if config.Monitor.WebhookURL != "" {
		sink = notification.NewWebhook(logger, config.Monitor.WebhookURL)
	}
	monitorService, err := monitor.New(logger, historyStore, sink, endpoints, monitor.Options{
		LatencyThresholdMillis: options.Timeout.Milliseconds(),
		GridWindow:             options.GridWindow,
		GridSlot:               options.GridSlot,
	})
	if err != nil {
		return err
	}
	registry := prometheus.DefaultRegisterer.(*prometheus.Registry)
	prober := probe.New(logger, options.Timeout)
	checkScheduler, err := scheduler.New(logger, prober, monitorService, monitorService.Endpoints(), options.Interval, options.Timeout, registry)
	if err != nil {
		return err
	}
	handlersBuilder := handlers.NewBuilder(monitorService, checkScheduler)
	server, err := http.NewServer(logger, config.HTTP, registry, handlersBuilder)
	if err != nil {
		return err
	}
	signals := make(chan os.Signal, 1)
	errChan := make(chan error)

	signal.Notify(
		signals,
		syscall.SIGINT,
		syscall.SIGTERM)

	checkScheduler.Start()
	server.Start()
	go func() {
		for sig := range signals {
			switch sig {
			case syscall.SIGINT, syscall.SIGTERM:
				logger.Info(fmt.Sprintf("received signal %s, starting shutdown", sig))
				signal.Stop(signals)
				checkScheduler.Stop()
				err := server.Stop()
				if shutdownErr := shutdownTracing(context.Background()); shutdownErr != nil {
					logger.Error(fmt.Sprintf("fail to stop the trace provider: %s", shutdownErr.Error()))
				}
				if err != nil {
					errChan <- err
				}
				errChan <- nil
			}

		}
	}()
	exitErr := <-errChan
	return exitErr
}
