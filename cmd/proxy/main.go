package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ashpect/fwdproxy/pkg/accesslog"
	"github.com/ashpect/fwdproxy/pkg/admin"
	"github.com/ashpect/fwdproxy/pkg/cache"
	"github.com/ashpect/fwdproxy/pkg/client"
	"github.com/ashpect/fwdproxy/pkg/config"
	"github.com/ashpect/fwdproxy/pkg/proxy"
	"github.com/ashpect/fwdproxy/pkg/request"
	"github.com/ashpect/fwdproxy/pkg/utils"
)

var (
	// CLI flags
	configFlag         string
	verbosityTraceFlag bool
)

const shutdownGrace = 5 * time.Second

func init() {
	flag.StringVar(&configFlag, "config", "", "Config file (.toml, .yaml or .yml)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-config file] [-vv] <port>\n", os.Args[0])
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.ListenAddr = ":" + flag.Arg(0)
	if verbosityTraceFlag {
		cfg.Log.Level = zerolog.TraceLevel.String()
	}

	logger, logCloser, err := utils.NewLogger(utils.LogOptions{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logCloser.Close()

	store, err := cache.NewStore(
		cache.WithCapacity(cfg.Cache.Slots),
		cache.WithByteBudget(cfg.Cache.MaxCacheSize),
		cache.WithObjectCeiling(cfg.Cache.MaxObjectSize),
		cache.WithLogger(logger),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot create cache")
	}

	recent := accesslog.NewMemory(cfg.AccessLog.Capacity)
	recorders := accesslog.Multi{recent}
	if cfg.AccessLog.SQLitePath != "" {
		db, err := accesslog.OpenSQLite(cfg.AccessLog.SQLitePath, logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Cannot open access log database")
		}
		defer db.Close()
		recorders = append(recorders, db)
	}

	connector := client.NewConnector(client.WithDialTimeout(cfg.Proxy.DialTimeout))
	parser := request.NewParser(
		request.WithPost(cfg.Proxy.AllowPost),
		request.WithMaxHeaders(cfg.Proxy.MaxHeaders),
	)
	handler := proxy.NewHandler(store, connector,
		proxy.WithParser(parser),
		proxy.WithUserAgent(cfg.Proxy.UserAgent),
		proxy.WithServerName(cfg.Proxy.ServerName),
		proxy.WithLogger(logger),
		proxy.WithAccessLog(recorders),
	)
	server := proxy.NewServer(handler, logger)

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.ListenAddr).Msg("Cannot listen")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var adminServer *http.Server
	if cfg.Admin.Enabled {
		adminServer = &http.Server{
			Addr:              cfg.Admin.ListenAddr,
			Handler:           admin.NewRouter(store, recent, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			utils.Log("admin listening on %s", cfg.Admin.ListenAddr)
			if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("admin server stopped")
				stop()
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ln)
	}()
	utils.Log("forward proxy listening on %s", ln.Addr())

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serveErr:
		if !errors.Is(err, proxy.ErrServerClosed) {
			log.Error().Err(err).Msg("proxy server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if adminServer != nil {
		adminServer.Shutdown(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("connections still open at exit")
	}
}
