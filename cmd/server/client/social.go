package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/handlers/v1alpha1"
)

var (
	chatLimit  int
	boardLimit int
)

var chatCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Post to world chat, or show recent messages with no arguments",
	RunE: func(_ *cobra.Command, args []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			social := v1alpha1.NewSocialClient(conn)
			if len(args) > 0 {
				resp, err := social.PostChat(ctx, &v1alpha1.PostChatRequest{Text: strings.Join(args, " ")})
				if err != nil {
					return err
				}
				printChat(resp.Message)
				return nil
			}

			resp, err := social.ListChat(ctx, &v1alpha1.ListChatRequest{Limit: chatLimit})
			if err != nil {
				return err
			}
			for _, m := range resp.Messages {
				printChat(m)
			}
			return nil
		})
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the power ranking",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewSocialClient(conn).Leaderboard(ctx, &v1alpha1.LeaderboardRequest{Limit: boardLimit})
			if err != nil {
				return err
			}
			for _, e := range resp.Entries {
				printEntry(e)
			}
			if resp.Caller != nil {
				fmt.Println("---")
				printEntry(resp.Caller)
			}
			return nil
		})
	},
}

func init() {
	chatCmd.Flags().IntVar(&chatLimit, "limit", 20, "number of messages to show")
	leaderboardCmd.Flags().IntVar(&boardLimit, "limit", 10, "number of entries to show")
}

func printChat(m *entities.ChatMessage) {
	name := m.Username
	if m.IsAdmin {
		name += " [GM]"
	}
	fmt.Printf("%s  %s: %s\n", m.SentAt.Format("15:04"), name, m.Text)
}

func printEntry(e *entities.LeaderboardEntry) {
	power := fmt.Sprintf("%d", e.Power)
	if e.GodMode {
		power = "∞"
	}
	fmt.Printf("%3d. %-20s %s\n", e.Rank, e.Username, power)
}
