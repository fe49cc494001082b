package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ochoko/admin"
	"github.com/ochoko/admin/handlers"
	"github.com/ochoko/admin/internal/config"
	"github.com/ochoko/admin/locales"
	"github.com/ochoko/admin/middlewares"
	"github.com/ochoko/admin/pkg/cache"
	"github.com/ochoko/admin/pkg/health"
	"github.com/ochoko/admin/pkg/i18n"
	"github.com/ochoko/admin/pkg/logger"
	"github.com/ochoko/admin/pkg/redis"
	"github.com/ochoko/admin/pkg/sakeapi"
	"github.com/ochoko/admin/pkg/session"
	"github.com/ochoko/admin/pkg/staging"
	"github.com/ochoko/admin/pkg/storage"
	"github.com/ochoko/admin/views"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}
	cmd.Flags().String("address", ":8080", "listen address")
	_ = c.v.BindPFlag("address", cmd.Flags().Lookup("address"))
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	cfg := c.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level: logger.ParseLevel(cfg.LogLevel),
		Text:  cfg.LogText,
		Sentry: logger.SentryConfig{
			DSN:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     "ochoko-admin@" + version,
		},
	}, middlewares.RequestIDExtractor(), middlewares.AdminExtractor())

	srv, err := newServer(ctx, cfg, log, c.httpClient)
	if err != nil {
		return err
	}

	log.Info("starting console",
		slog.String("address", cfg.Address),
		slog.String("api_url", cfg.APIURL),
		slog.Bool("redis", !cfg.Memory()),
		slog.Bool("s3_staging", cfg.S3.Bucket != ""),
	)
	return srv.app.Run(cfg.Address, srv.runOptions(log, cfg)...)
}

// server is the wired console plus what must be released on shutdown.
type server struct {
	app     *admin.App
	closers []func(context.Context) error
}

func (s *server) runOptions(log *slog.Logger, cfg config.Config) []admin.RunOption {
	opts := []admin.RunOption{
		admin.Logger(log),
		admin.ShutdownTimeout(cfg.ShutdownTimeout),
	}
	for _, fn := range s.closers {
		opts = append(opts, admin.ShutdownHook(fn))
	}
	return append(opts, admin.ShutdownHook(logger.FlushSentry(cfg.ShutdownTimeout)))
}

// stores are the caches behind sessions, page data, uploads and users.
type stores struct {
	sessions session.Store
	pages    cache.Cache[[]byte]
	files    cache.Cache[[]byte]
	users    cache.Cache[sakeapi.User]
	checks   []admin.HealthOption
	closers  []func(context.Context) error
}

// newStores keeps everything in memory unless a Redis URL is configured.
func newStores(ctx context.Context, cfg config.Config) (*stores, error) {
	if cfg.Memory() {
		sessions := session.NewMemoryStore()
		pages := cache.NewMemory[[]byte]()
		files := cache.NewMemory[[]byte]()
		users := cache.NewMemory[sakeapi.User]()
		return &stores{
			sessions: sessions,
			pages:    pages,
			files:    files,
			users:    users,
			closers:  []func(context.Context) error{closer(sessions), closer(pages), closer(files), closer(users)},
		}, nil
	}

	client, err := redis.Open(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &stores{
		sessions: session.NewCacheStore(redisCache[session.Session](client, "session", cache.JSONCodec[session.Session]{})),
		pages:    redisCache[[]byte](client, "page", cache.BytesCodec{}),
		files:    redisCache[[]byte](client, "upload", cache.BytesCodec{}),
		users:    redisCache[sakeapi.User](client, "user", cache.JSONCodec[sakeapi.User]{}),
		checks:   []admin.HealthOption{admin.WithReadinessCheck("redis", redis.Ping(client))},
		closers:  []func(context.Context) error{redis.Closer(client)},
	}, nil
}

func redisCache[V any](client goredis.UniversalClient, ns string, codec cache.Codec[V]) cache.Cache[V] {
	return cache.NewRedis(client, codec, cache.WithNamespace("ochoko:"+ns))
}

func closer(c io.Closer) func(context.Context) error {
	return func(context.Context) error { return c.Close() }
}

// newStager stages uploads in the bucket when one is configured.
func newStager(cfg config.Config, files cache.Cache[[]byte]) (staging.Stager, []admin.HealthOption, error) {
	if cfg.S3.Bucket == "" {
		return staging.NewCacheStager(files, cfg.StagingTTL), nil, nil
	}
	bucket, err := storage.New(storage.Config{
		Bucket:    cfg.S3.Bucket,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		Prefix:    cfg.S3.Prefix,
		PathStyle: cfg.S3.PathStyle,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("import staging bucket: %w", err)
	}
	return staging.NewBucketStager(bucket), []admin.HealthOption{admin.WithReadinessCheck("s3", bucket.Ping)}, nil
}

// newServer wires the console.
func newServer(ctx context.Context, cfg config.Config, log *slog.Logger, hc *http.Client) (*server, error) {
	bundle, err := i18n.Load(locales.FS, cfg.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}

	st, err := newStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	stager, bucketChecks, err := newStager(cfg, st.files)
	if err != nil {
		return nil, errors.Join(err, closeAll(ctx, st.closers))
	}

	limiter := middlewares.NewRateLimiter(rate.Limit(cfg.LoginRate), cfg.LoginBurst)
	closers := append(st.closers, closer(limiter))

	newClient := func(ts sakeapi.TokenStore) *sakeapi.Client {
		return sakeapi.New(cfg.APIURL,
			sakeapi.WithHTTPClient(hc),
			sakeapi.WithTokenStore(ts),
			sakeapi.WithLogger(log),
			sakeapi.WithUserAgent("ochoko-admin/"+version),
		)
	}
	last := handlers.NewLastGood(st.pages, handlers.DefaultLastGoodTTL)

	app := admin.New(
		admin.WithCustomLogger(log),
		admin.WithCookieOptions(
			admin.WithCookieSecret(cfg.CookieSecret),
			admin.WithCookieSecure(cfg.CookieSecure),
			admin.WithCookieSameSite(http.SameSiteLaxMode),
		),
		admin.WithSession(st.sessions,
			admin.WithSessionMaxAge(cfg.SessionMaxAge),
			admin.WithSessionSecure(cfg.CookieSecure),
		),
		admin.WithTranslations(bundle),
		admin.WithStaticFiles("/static/", views.Static(), "static"),
		admin.WithHealthChecks(append(append(st.checks, bucketChecks...),
			admin.WithReadinessCheck("sake_api", health.HTTPCheck(hc, cfg.APIURL+"/breweries/")),
		)...),
		admin.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.I18n(bundle),
			middlewares.LoadAuth(newClient,
				middlewares.WithAuthUserCache(cache.NewLoader(st.users), cfg.UserCacheTTL),
			),
		),
		admin.WithErrorHandler(handlers.ErrorHandler),
		admin.WithNotFoundHandler(handlers.NotFound),
		admin.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		admin.WithHandlers(
			handlers.NewAuthHandler(limiter),
			handlers.NewLanguageHandler(bundle),
			handlers.NewSakesHandler(last, cfg.PageSize),
			handlers.NewBreweriesHandler(last),
			handlers.NewDuplicatesHandler(last),
			handlers.NewImportHandler(stager, last, cfg.MaxUpload),
		),
	)
	return &server{app: app, closers: closers}, nil
}

func closeAll(ctx context.Context, closers []func(context.Context) error) error {
	var errs []error
	for _, fn := range closers {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}
