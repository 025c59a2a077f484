package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/matst80/slask-seo/pkg/common"
	"github.com/matst80/slask-seo/pkg/config"
	"github.com/matst80/slask-seo/pkg/messaging"
	"github.com/matst80/slask-seo/pkg/pager"
	"github.com/matst80/slask-seo/pkg/seo"
	"github.com/matst80/slask-seo/pkg/server"
	"github.com/matst80/slask-seo/pkg/source"
	"github.com/matst80/slask-seo/pkg/urlbuilder"
)

var listenAddress = envOr("LISTEN_ADDRESS", ":8080")
var debugAddress = envOr("DEBUG_ADDRESS", ":8081")
var baseUrl = os.Getenv("BASE_URL")
var storeCode = envOr("STORE_CODE", "default")
var country = envOr("COUNTRY", "se")
var redisUrl = os.Getenv("REDIS_URL")
var redisPassword = os.Getenv("REDIS_PASSWORD")
var rabbitUrl = os.Getenv("RABBIT_HOST")
var tokenHash = os.Getenv("SEO_TOKEN_HASH")
var apiKey = os.Getenv("SEO_API_KEY")
var upstreamUrl = os.Getenv("UPSTREAM_URL")
var lang = envOr("LANGUAGE", "en")

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

type app struct {
	logger *zap.Logger
	store  config.WritableStore
	redis  *config.RedisStore
	conn   *amqp.Connection
}

func (a *app) connectStore(ctx context.Context) {
	if redisUrl == "" {
		a.logger.Info("no redis url, using in memory config")
		a.store = config.NewMemoryStore(nil)
	} else {
		a.redis = config.NewRedisStore(redisUrl, redisPassword, 0, storeCode)
		if err := a.redis.Reload(ctx); err != nil {
			a.logger.Error("failed to load config from redis", zap.Error(err))
		}
		a.store = a.redis
	}
	if err := config.LoadDefaults(a.store); err != nil {
		a.logger.Fatal("failed to load config defaults", zap.Error(err))
	}
}

func (a *app) connectAmqp() {
	if rabbitUrl == "" || a.redis == nil {
		return
	}
	conn, err := amqp.DialConfig(rabbitUrl, amqp.Config{
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		a.logger.Error("failed to connect to rabbitmq, config changes stay local", zap.Error(err))
		return
	}
	a.conn = conn
	ch, err := conn.Channel()
	if err != nil {
		a.logger.Fatal("failed to open a channel", zap.Error(err))
	}
	notifier, err := messaging.NewConfigNotifier(ch, country)
	if err != nil {
		a.logger.Fatal("failed to declare config topic", zap.Error(err))
	}
	a.redis.Notifier = notifier
	if err := messaging.ListenForConfigChanges(conn, country, storeCode, a.redis); err != nil {
		a.logger.Fatal("failed to listen for config changes", zap.Error(err))
	}
	a.logger.Info("listening for config changes", zap.String("store", storeCode))
}

func (a *app) authenticator() server.Authenticator {
	if tokenHash == "" && apiKey == "" {
		a.logger.Warn("SEO_TOKEN_HASH and SEO_API_KEY not set, admin api is open")
		return &server.OpenAuth{}
	}
	auth, err := server.NewTokenAuth(tokenHash, apiKey)
	if err != nil {
		a.logger.Fatal("failed to create auth", zap.Error(err))
	}
	return auth
}

func (a *app) close(ctx context.Context) error {
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq connection", zap.Error(err))
		}
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	a := &app{logger: logger}
	a.connectStore(context.Background())
	a.connectAmqp()

	tag, err := language.Parse(lang)
	if err != nil {
		logger.Warn("unknown language, using english", zap.String("language", lang))
		tag = language.English
	}

	p := pager.New()
	ws := &server.WebServer{
		Helper:           seo.NewHelper(a.store, urlbuilder.NewBuilder(baseUrl), p, logger),
		Store:            a.store,
		SliderSubmitType: source.NewSliderSubmitType(tag),
		Pager:            p,
		Auth:             a.authenticator(),
		Logger:           logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", ws.ClientHandler()))
	mux.Handle("/admin/", http.StripPrefix("/admin", ws.AdminHandler()))
	if upstreamUrl != "" {
		upstream, err := url.Parse(upstreamUrl)
		if err != nil {
			logger.Fatal("invalid upstream url", zap.String("url", upstreamUrl), zap.Error(err))
		}
		mux.Handle("/", ws.LayerRouter(server.NewStorefrontProxy(upstream)))
		logger.Info("routing storefront requests", zap.String("upstream", upstreamUrl))
	}

	debugMux := http.NewServeMux()
	debugMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	debugMux.Handle("/metrics", promhttp.Handler())

	timeouts := common.LoadTimeoutConfig(common.TimeoutConfig{
		ReadHeader: 5 * time.Second,
		Read:       15 * time.Second,
		Write:      15 * time.Second,
		Idle:       60 * time.Second,
		Shutdown:   15 * time.Second,
		Hook:       5 * time.Second,
	})
	common.RunServersWithShutdown([]*http.Server{
		common.NewServerWithTimeouts(listenAddress, server.RequestLogger(logger, mux), timeouts),
		common.NewServerWithTimeouts(debugAddress, debugMux, timeouts),
	}, timeouts.Shutdown, timeouts.Hook, a.close)
}
