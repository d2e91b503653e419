package common

import (
	"net/http"

	"github.com/futig/launchpad-backend/internal/config"
	pkgHTTP "github.com/futig/launchpad-backend/pkg/http"
	"go.uber.org/zap"
)

func clientOptions(cfg config.HTTPClientConfig) []pkgHTTP.HttpOpts {
	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
	}
	if cfg.Token != "" {
		opts = append(opts, pkgHTTP.WithAuthToken(cfg.Token))
	}
	return opts
}

// NewHTTPClient builds a logging client for provider SDKs
func NewHTTPClient(cfg config.HTTPClientConfig) *http.Client {
	return pkgHTTP.NewClient(clientOptions(cfg)...)
}

// NewBaseConnector builds a JSON connector; baseURL may be empty when every request sets its own URL
func NewBaseConnector(cfg config.HTTPClientConfig, baseURL string, logger *zap.Logger) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: baseURL,
	}

	return pkgHTTP.NewConnector(connCfg, clientOptions(cfg)...)
}
