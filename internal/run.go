package internal

// Run serves the app on addr and blocks until shutdown.
//
// Example:
//
//	err := app.Run(cfg.Address,
//	    admin.Logger(log),
//	    admin.ShutdownTimeout(cfg.ShutdownTimeout),
//	    admin.ShutdownHook(redis.Closer(client)),
//	)
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.address != "" {
		addr = cfg.address
	}
	log := cfg.logger
	if log == nil {
		log = a.logger
	}
	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          log,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}
