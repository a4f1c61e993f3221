// Package client provides test commands for the RPG Narrator gRPC services
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/KirkDiggler/rpg-narrator/internal/clients/arena"
	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/handlers/v1alpha1"
)

var (
	// Connection flags
	serverAddr string
	username   string
	timeout    time.Duration
)

// ClientCmd is the root command for all client test commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Test client commands for RPG Narrator",
	Long:  `Client commands exercise the RPG Narrator services by making real gRPC requests as --user.`,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if username == "" {
			return fmt.Errorf("--user is required")
		}
		return nil
	},
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().StringVarP(&username, "user", "u", "", "username to act as")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	// Single-player commands
	ClientCmd.AddCommand(startCmd)
	ClientCmd.AddCommand(sayCmd)
	ClientCmd.AddCommand(stateCmd)
	ClientCmd.AddCommand(skillCmd)
	ClientCmd.AddCommand(itemCmd)
	ClientCmd.AddCommand(equipCmd)
	ClientCmd.AddCommand(saveCmd)
	ClientCmd.AddCommand(appraiseCmd)
	ClientCmd.AddCommand(scanCmd)
	ClientCmd.AddCommand(analyzeCmd)

	// PvP
	ClientCmd.AddCommand(battleCmd)

	// Mail and social
	ClientCmd.AddCommand(mailCmd)
	ClientCmd.AddCommand(chatCmd)
	ClientCmd.AddCommand(leaderboardCmd)
}

// createConnection creates a gRPC connection to the server
func createConnection() (*grpc.ClientConn, error) {
	return arena.Dial(serverAddr)
}

// callContext bounds one request and carries the caller identity
func callContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	return metadata.AppendToOutgoingContext(ctx, v1alpha1.UserHeader, username), cancel
}

// withConn dials, runs fn and closes the connection
func withConn(fn func(ctx context.Context, conn *grpc.ClientConn) error) error {
	conn, err := createConnection()
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}()

	ctx, cancel := callContext()
	defer cancel()

	if err := fn(ctx, conn); err != nil {
		return describe(errors.FromGRPCError(err))
	}
	return nil
}

// describe turns a service error into a one-line message
func describe(err error) error {
	var e *errors.Error
	if errors.As(err, &e) {
		return fmt.Errorf("%s: %s", e.Code, e.Message)
	}
	return err
}

func printNotices(notices []entities.Notice) {
	for _, n := range notices {
		fmt.Printf("  [%s] %s\n", n.Type, n.Text)
	}
}
