package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/winterSteve25/props/internal/server"
)

var (
	serveGRPCAddr   string
	serveWSAddr     string
	serveReflection bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the parse service",
	Long: `Serve starts the props.v1.Props gRPC service and the HTTP endpoint
with /ws (live parsing over WebSocket) and /health.

Addresses default to the [server] section of the configuration.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveGRPCAddr, "grpc-addr", "", "gRPC listen address")
	serveCmd.Flags().StringVar(&serveWSAddr, "ws-addr", "", "HTTP/WebSocket listen address")
	serveCmd.Flags().BoolVar(&serveReflection, "reflection", true, "enable gRPC reflection")
}

func runServe(cmd *cobra.Command, args []string) error {
	r, err := recovery("")
	if err != nil {
		return err
	}

	history, err := server.OpenHistory(appConfig.History.Enabled, appConfig.History.Path)
	if err != nil {
		return err
	}

	svc := server.NewService(server.ServiceOptions{
		Logger:         logger,
		Recovery:       r,
		MaxSourceBytes: appConfig.Server.MaxSourceBytes,
		History:        history,
		CacheSize:      appConfig.Server.CacheSize,
		CacheTTL:       appConfig.Server.CacheTTL.Duration,
	})

	cfg := server.Config{
		GRPCAddr:        appConfig.Server.GRPCAddr,
		WSAddr:          appConfig.Server.WSAddr,
		ShutdownTimeout: appConfig.Server.ShutdownTimeout.Duration,
		Reflection:      serveReflection,
	}
	if serveGRPCAddr != "" {
		cfg.GRPCAddr = serveGRPCAddr
	}
	if serveWSAddr != "" {
		cfg.WSAddr = serveWSAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "props service: gRPC %s, WebSocket %s/ws\n", cfg.GRPCAddr, cfg.WSAddr)
	return server.New(cfg, svc, logger).Run(ctx)
}
