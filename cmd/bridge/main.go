package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	nethttp "net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"yocto-led-bridge/internal/adapters/input/http"
	"yocto-led-bridge/internal/adapters/input/mqtt"
	"yocto-led-bridge/internal/adapters/input/ssdp"
	"yocto-led-bridge/internal/adapters/output/persistence"
	"yocto-led-bridge/internal/adapters/output/yoctopuce"
	"yocto-led-bridge/internal/domain/service"
	"yocto-led-bridge/internal/domain/translator"
	"yocto-led-bridge/internal/infrastructure/config"
	"yocto-led-bridge/internal/infrastructure/logging"
)

var version = "dev"

func main() {
	defaultConfig := os.Getenv("BRIDGE_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "/app/bridge.yaml"
	}
	configPath := flag.String("config", defaultConfig, "path to the YAML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging, version)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("bridge stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ip := cfg.HTTP.AdvertiseIP
	if ip == "" {
		ip = getLocalIP()
	}
	if ip == "" {
		return errors.New("could not determine local IP, set LOCAL_IP")
	}
	port := listenPort(cfg.HTTP.Addr)
	// Stable per advertised address so Hue clients keep recognising the bridge.
	udn := uuid.NewSHA1(uuid.NameSpaceURL, []byte("yocto-led-bridge://"+ip)).String()

	logger.Info("starting yoctopuce led bridge", "ip", ip, "port", port)

	entryRepo := persistence.NewJSONEntryRepository(cfg.Entries.Path)
	sdk := yoctopuce.NewClient(cfg.Yoctopuce.RequestTimeout())

	bridgeService := service.NewBridgeService(sdk, entryRepo, service.Options{
		Logger:      logger,
		Transition:  cfg.Yoctopuce.Transition(),
		TestTimeout: cfg.Yoctopuce.TestTimeout(),
	})
	if err := bridgeService.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := bridgeService.Close(); err != nil {
			logger.Warn("hub disconnect failed", "error", err)
		}
	}()

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT, logger)
		if err != nil {
			return err
		}
		defer client.Close()

		discovery := mqtt.NewDiscovery(client, bridgeService, cfg.MQTT.DiscoveryPrefix, cfg.MQTT.BaseTopic, logger)
		if err := discovery.Start(ctx); err != nil {
			return err
		}
		defer discovery.Stop()
	}

	if cfg.SSDP.Enabled {
		ssdpServer := ssdp.NewServer(ip, port, udn, logger)
		go func() {
			if err := ssdpServer.Start(ctx); err != nil {
				logger.Error("ssdp server error", "error", err)
			}
		}()
	}

	httpServer := http.NewServer(bridgeService, http.Options{
		IP:   ip,
		Port: port,
		UDN:  udn,
		Translator: &translator.LightStrategy{
			ToHueFormula:    translator.Formula(cfg.Hue.ToHueFormula),
			ToEntityFormula: translator.Formula(cfg.Hue.ToEntityFormula),
		},
		Logger: logger,
	})
	if err := httpServer.Run(ctx, cfg.HTTP.Addr); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	logger.Info("shutting down")
	return nil
}

func listenPort(addr string) int {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 80
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return 80
	}
	return port
}

func getLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return ""
}
