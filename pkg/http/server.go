package http

import (
	"context"

	http_router "github.com/lintang-b-s/roadbisect/pkg/http/router"
	"github.com/lintang-b-s/roadbisect/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/roadbisect/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Serve. run the inspection api until ctx is canceled.
func (s *Server) Serve(
	ctx context.Context,
	useRateLimit bool,
	partitionService controllers.PartitionService,
) error {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("HTTP_SERVER_SHUTDOWN_TIMEOUT", "10s")

	config := http_server.Config{
		Port:    viper.GetInt("API_PORT"),
		Timeout: viper.GetDuration("API_TIMEOUT"),
	}

	api := http_router.NewAPI(s.Log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Run(gctx, config, useRateLimit, partitionService)
	})

	return g.Wait()
}
