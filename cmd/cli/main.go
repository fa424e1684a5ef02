package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultBaseURL  = "http://localhost:8080"
	defaultGRPCAddr = "localhost:9090"
)

var (
	baseURL  string
	grpcAddr string
	verbose  bool
	asJSON   bool

	logger = zap.NewNop()
	client = &http.Client{Timeout: 15 * time.Second}
)

var rootCmd = &cobra.Command{
	Use:   "herohub",
	Short: "Browse superheroes through a herohub api-server",
	Long: `herohub talks to a running api-server (HTTP and websocket) or
grpc-server and prints the same list and detail views the web UI shows.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "api", defaultBaseURL, "api-server base URL")
	rootCmd.PersistentFlags().StringVar(&grpcAddr, "grpc", defaultGRPCAddr, "grpc-server address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON")

	rootCmd.AddCommand(listCmd, showCmd, watchCmd, exportCmd, rpcCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
