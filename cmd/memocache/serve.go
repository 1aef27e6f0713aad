package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/IvanBrykalov/memocache/config"
	"github.com/IvanBrykalov/memocache/metrics/prom"
	"github.com/IvanBrykalov/memocache/registry"
	"github.com/IvanBrykalov/memocache/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin server and the demo card endpoints",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("host", "0.0.0.0", "address to bind")
	f.Int("port", 8000, "port to bind")
	f.String("env", "", "environment name: dev, test, prod or local (reads .env.<env>)")
	f.String("env-file", "", "dotenv file with CACHE_* overrides (wins over --env)")
	for _, name := range []string{"host", "port", "env", "env-file"} {
		if err := viper.BindPFlag(name, f.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// envFile picks the dotenv file to read, or "" for none. A file named by
// --env that does not exist is skipped; one named by --env-file must exist.
func envFile() string {
	if p := viper.GetString("env-file"); p != "" {
		return p
	}
	env := viper.GetString("env")
	if env == "" {
		return ""
	}
	p := ".env." + env
	if _, err := os.Stat(p); err != nil {
		slog.Warn("env file not found, using process environment only", "env", env, "path", p)
		return ""
	}
	return p
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var copts []config.Option
	if p := envFile(); p != "" {
		copts = append(copts, config.WithEnvFile(p))
	}
	configs, err := config.New(copts...)
	if err != nil {
		return err
	}
	for _, name := range configs.Names() {
		c := configs.Get(name)
		slog.Info("cache config", "name", name, "kind", c.Kind, "capacity", c.Capacity,
			"ttl", c.TTL(), "enabled", c.Enabled)
	}

	reg := registry.New(configs, registry.WithMetrics(prom.New(nil, "memocache", "", nil)))
	srv := server.New(reg, server.WithConfigs(configs), server.WithGatherer(prometheus.DefaultGatherer))
	newCardAPI(reg, newCardService(50*time.Millisecond)).mount(srv.Echo())

	addr := net.JoinHostPort(viper.GetString("host"), strconv.Itoa(viper.GetInt("port")))
	errc := make(chan error, 1)
	go func() { errc <- srv.Start(addr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	slog.Info("admin server stopped")
	return <-errc
}
