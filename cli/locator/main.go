package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/daniil11ru/lastseen/cli/locator/api"
	"github.com/daniil11ru/lastseen/cli/locator/config"
	"github.com/daniil11ru/lastseen/cli/locator/domain"
	"github.com/daniil11ru/lastseen/cli/locator/storage"
	"github.com/daniil11ru/lastseen/cli/locator/storage/redisdrv"
)

func main() {
	configFilePath := ""
	flag.StringVar(&configFilePath, "c", "", "")
	flag.Parse()
	cfg, err := getConfig(configFilePath)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
		return
	}

	configureLogging(cfg)

	connector := &redisdrv.Connector{}
	if err := connector.Connect(cfg.Redis); err != nil {
		log.Fatalf("Could not configure the redis connection: %v", err)
		return
	}
	defer connector.Close()

	deviceStore := storage.NewNamespaceStore("device", cfg.DevicePrefix, connector,
		storage.Decoder{IDField: "device_id", LegacyIDField: "id"})
	mobileStore := storage.NewNamespaceStore("mobile", cfg.MobilePrefix, connector,
		storage.Decoder{IDField: "user_id", LegacyIDField: "id"})

	deviceLookup := domain.NewLookup(deviceStore, cfg.MaxBatchSize, cfg.MaxListLimit)
	mobileLookup := domain.NewLookup(mobileStore, cfg.MaxBatchSize, cfg.MaxListLimit)

	if cfg.StatsCron != "" {
		c := cron.New()
		c.AddFunc(cfg.StatsCron, func() { logStats(deviceLookup, mobileLookup) })
		c.Start()
		defer c.Stop()
		log.Infof("Scheduled stats snapshot (%s)", cfg.StatsCron)
	}

	handler := api.NewHandler(map[string]api.Service{
		"devices": deviceLookup,
		"users":   mobileLookup,
	})
	controller := api.NewController(handler)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting API on %s", cfg.GetListenAddress())
		errCh <- controller.Run(cfg.GetListenAddress())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("API stopped: %v", err)
	case sig := <-quit:
		log.Infof("Received %s, shutting down", sig)
	}
}

func getConfig(configFilePath string) (config.Settings, error) {
	var c config.Settings
	var err error

	if configFilePath == "" {
		return c, fmt.Errorf("config path is not set")
	}

	c, err = config.New(configFilePath)
	if err != nil {
		return c, fmt.Errorf("could not parse config: %v", err)
	}

	return c, nil
}

func configureLogging(cfg config.Settings) {
	log.SetLevel(cfg.GetLogLevel())

	consoleFmt := &log.TextFormatter{ForceColors: true, FullTimestamp: false}
	log.SetFormatter(consoleFmt)
	log.SetOutput(os.Stdout)

	if cfg.LogFilePath != "" {
		logDir := filepath.Dir(cfg.LogFilePath)
		if _, err := os.Stat(logDir); os.IsNotExist(err) {
			if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
				log.Fatalf("Could not create the log directory: %v", err)
			}
		}

		lumberjackLogger := &lumberjack.Logger{
			Filename:   cfg.LogFilePath,
			MaxSize:    100,
			MaxBackups: 366,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}

		fileFmt := &log.TextFormatter{DisableColors: true, FullTimestamp: true}
		hook := lfshook.NewHook(lfshook.WriterMap{
			log.PanicLevel: lumberjackLogger,
			log.FatalLevel: lumberjackLogger,
			log.ErrorLevel: lumberjackLogger,
			log.WarnLevel:  lumberjackLogger,
			log.InfoLevel:  lumberjackLogger,
			log.DebugLevel: lumberjackLogger,
			log.TraceLevel: lumberjackLogger,
		}, fileFmt)

		log.AddHook(hook)
	}
}

func logStats(deviceLookup, mobileLookup *domain.Lookup) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	device := deviceLookup.Status(ctx)
	mobile := mobileLookup.Status(ctx)
	log.Infof("Stats snapshot: devices healthy=%t count=%d memory=%dB, users healthy=%t count=%d memory=%dB",
		device.Healthy, device.Stats.Count, device.Stats.MemoryBytes,
		mobile.Healthy, mobile.Stats.Count, mobile.Stats.MemoryBytes)
}
