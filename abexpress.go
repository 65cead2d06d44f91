// Package abexpress bootstraps an HTTP application server and a leveled
// multi-sink logger from declarative configuration.
package abexpress

import (
	"github.com/aiden-jnj/ab-express/config"
	"github.com/aiden-jnj/ab-express/logging"
	"github.com/aiden-jnj/ab-express/server"
)

// CreateLogger builds a leveled logger from cfg, resolving relative paths
// against root. A nil cfg yields the defaults: level info, console plus
// per-severity daily files under root/logs.
func CreateLogger(root string, cfg *config.LogConfig, opts ...logging.Option) (*logging.Logger, error) {
	return logging.New(root, cfg, opts...)
}

// CreateServer assembles an application server from cfg, resolving relative
// paths against root. The returned Application is configured but not yet
// listening; call Listen to bind.
func CreateServer(root string, cfg *config.ServerConfig) (*server.Application, error) {
	return server.New(root, cfg)
}
