package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"herohub/internal/grpcserver"
)

var rpcSeed string

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Query grpc-server directly (raw JSON output)",
}

var rpcListCmd = &cobra.Command{
	Use:   "list",
	Short: "ListHeroes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRPC(cmd, func(ctx context.Context, c *grpcserver.Client) (any, error) {
			return c.ListHeroes(ctx, rpcSeed)
		})
	},
}

var rpcSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "SearchHeroes (token provider only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRPC(cmd, func(ctx context.Context, c *grpcserver.Client) (any, error) {
			return c.SearchHeroes(ctx, args[0])
		})
	},
}

var rpcShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "GetHero",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRPC(cmd, func(ctx context.Context, c *grpcserver.Client) (any, error) {
			return c.GetHero(ctx, args[0])
		})
	},
}

func init() {
	rpcListCmd.Flags().StringVar(&rpcSeed, "seed", "", "seed query (token provider)")
	rpcCmd.AddCommand(rpcListCmd, rpcSearchCmd, rpcShowCmd)
}

func dialGRPC(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func withRPC(cmd *cobra.Command, call func(context.Context, *grpcserver.Client) (any, error)) error {
	conn, err := dialGRPC(grpcAddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	v, err := call(ctx, grpcserver.NewClient(conn))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), v)
}
