package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	abexpress "github.com/aiden-jnj/ab-express"
	"github.com/aiden-jnj/ab-express/config"
	"github.com/aiden-jnj/ab-express/logging"
	"github.com/aiden-jnj/ab-express/server"
)

var serveFlags struct {
	root      string
	port      int
	env       string
	static    string
	views     string
	ignore404 bool
	metrics   bool
	logLevel  int
	logDir    string
	timeout   time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the application server",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.root, "root", "", "application root directory (default: working directory)")
	f.IntVar(&serveFlags.port, "port", 0, "listen port (PORT env and config apply when unset)")
	f.StringVar(&serveFlags.env, "env", "", "runtime environment (development, production)")
	f.StringVar(&serveFlags.static, "static", "", "static files directory")
	f.StringVar(&serveFlags.views, "views", "", "view templates directory")
	f.BoolVar(&serveFlags.ignore404, "ignore-404", false, "serve the entry page for unmatched GET requests")
	f.BoolVar(&serveFlags.metrics, "metrics", false, "expose Prometheus metrics on /metrics")
	f.IntVar(&serveFlags.logLevel, "log-level", config.DefaultLogLevel, "highest severity written to files (0=error .. 6=silly)")
	f.StringVar(&serveFlags.logDir, "log-dir", "", "log file directory (default: <root>/logs)")
	f.DurationVar(&serveFlags.timeout, "timeout", 0, "per-request processing deadline")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := serveFlags.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = wd
	}

	level := serveFlags.logLevel
	logger, err := abexpress.CreateLogger(root, &config.LogConfig{
		Level: &level,
		Dir:   serveFlags.logDir,
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	janitor, err := logging.NewJanitor(logger)
	if err != nil {
		return err
	}
	janitor.Start()
	defer janitor.Stop()

	app, err := abexpress.CreateServer(root, &config.ServerConfig{
		Port:       serveFlags.port,
		Env:        serveFlags.env,
		StaticPath: serveFlags.static,
		ViewsPath:  serveFlags.views,
		Ignore404:  serveFlags.ignore404,
		UseMetrics: &serveFlags.metrics,
		Timeout:    serveFlags.timeout,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	err = app.Listen(ctx)

	// A port conflict or a privilege refusal is an operational condition,
	// already logged by Listen. Exit cleanly instead of crashing.
	var bindErr *server.BindError
	if errors.As(err, &bindErr) && bindErr.Recoverable() {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("server exited cleanly")
	return nil
}
