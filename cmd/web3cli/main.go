package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"OpenWeb3-Client/internal/audit"
	"OpenWeb3-Client/internal/config"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/internal/observability/alerting"
	"OpenWeb3-Client/internal/observability/metrics"
	"OpenWeb3-Client/pkg/logger"
	"OpenWeb3-Client/pkg/middleware"
	"OpenWeb3-Client/pkg/provider"
	"OpenWeb3-Client/pkg/web3"
)

// main 是 web3cli 命令行工具的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("web3cli 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	configPath := flag.String("config", "", "配置文件路径")
	watch := flag.Duration("watch", 0, "持续输出链状态的间隔；0 表示只输出一次")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("OPENWEB3_CONFIG")
	}
	if path == "" {
		path = filepath.Join("configs", "openweb3.yaml")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logger.Level,
		Format:      cfg.Logger.Format,
		OutputPaths: cfg.Logger.OutputPaths,
	}); err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Named("web3cli")

	prov, err := buildProvider(ctx, cfg.Endpoint)
	if err != nil {
		return err
	}

	layers, closeRecorders, err := buildMiddlewares(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRecorders()

	client, err := web3.New(prov, web3.WithMiddlewares(layers...))
	if err != nil {
		return err
	}
	defer client.Close()

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartServer(ctx, cfg.Metrics.Address); err != nil && ctx.Err() == nil {
				log.Error("指标服务退出", "error", err)
			}
		}()
	}

	if err := printSnapshot(ctx, client); err != nil {
		return err
	}
	if *watch <= 0 {
		return nil
	}

	ticker := time.NewTicker(*watch)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printSnapshot(ctx, client); err != nil {
				log.Warn("获取链状态失败", "error", err)
			}
		}
	}
}

func buildProvider(ctx context.Context, cfg config.EndpointConfig) (provider.Provider, error) {
	transport := strings.ToLower(strings.TrimSpace(cfg.Transport))
	if transport == "" {
		if strings.HasPrefix(cfg.URL, "http://") || strings.HasPrefix(cfg.URL, "https://") {
			transport = "http"
		} else {
			transport = "dial"
		}
	}
	switch transport {
	case "http":
		return provider.NewHTTPProvider(cfg.URL)
	case "dial":
		return provider.Dial(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("不支持的 transport 类型 %s", cfg.Transport)
	}
}

// buildMiddlewares 按配置组装洋葱层，外层在前。
func buildMiddlewares(ctx context.Context, cfg *config.Config) ([]manager.Middleware, func(), error) {
	layers := []manager.Middleware{
		middleware.Logging(logger.Named("rpc")),
		middleware.Metrics(),
	}
	cleanup := func() {}

	if cfg.Alerting.Enabled {
		dispatcher := alerting.NewFanout(&alerting.WebhookNotifier{URL: cfg.Alerting.Webhook})
		layers = append(layers, middleware.Alerting(dispatcher, cfg.Endpoint.URL, logger.Named("alerting")))
	}

	if cfg.Cache.Enabled {
		cacheLayer, err := middleware.Cache(middleware.CacheConfig{
			Address:  cfg.Cache.Address,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
			Methods:  cfg.Cache.Methods,
		}, logger.Named("cache"))
		if err != nil {
			return nil, nil, err
		}
		layers = append(layers, cacheLayer)
	}

	switch cfg.Audit.Driver {
	case "", "none":
	case "mysql":
		store, err := audit.NewMySQLStore(ctx, audit.MySQLConfig{DSN: cfg.Audit.DSN})
		if err != nil {
			return nil, nil, err
		}
		layers = append(layers, middleware.Audit(store, logger.Named("audit")))
		cleanup = func() { _ = store.Close() }
	case "amqp":
		publisher, err := audit.NewAMQPPublisher(audit.AMQPConfig{URL: cfg.Audit.URL, Queue: cfg.Audit.Queue})
		if err != nil {
			return nil, nil, err
		}
		layers = append(layers, middleware.Audit(publisher, logger.Named("audit")))
		cleanup = func() { _ = publisher.Close() }
	default:
		return nil, nil, fmt.Errorf("不支持的审计驱动 %s", cfg.Audit.Driver)
	}

	// 重试层放在最内侧，让缓存与审计只看到最终结果。
	layers = append(layers, middleware.Retry(3, 200*time.Millisecond))
	return layers, cleanup, nil
}

func printSnapshot(ctx context.Context, client *web3.Client) error {
	connected := client.IsConnected(ctx)
	fmt.Printf("connected: %v\n", connected)
	if !connected {
		return nil
	}

	if nodeVersion, err := client.Version().Node(ctx); err == nil {
		fmt.Printf("node:      %s\n", nodeVersion)
	}
	chainID, err := client.Eth().ChainID(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("chain id:  %s\n", chainID)

	blockNumber, err := client.Eth().BlockNumber(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("block:     %d\n", blockNumber)

	if gasPrice, err := client.Eth().GasPrice(ctx); err == nil {
		if gwei, err := web3.FromWei(gasPrice, "gwei"); err == nil {
			fmt.Printf("gas price: %s gwei\n", gwei)
		}
	}
	if peers, err := client.Net().PeerCount(ctx); err == nil {
		fmt.Printf("peers:     %d\n", peers)
	}
	return nil
}
