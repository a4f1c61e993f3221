package client

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/KirkDiggler/rpg-narrator/internal/clients/arena"
	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/handlers/v1alpha1"
	"github.com/KirkDiggler/rpg-narrator/internal/session"
)

var (
	pollInterval time.Duration
	recentLimit  int
)

const battlePlayHelp = `Open a live battle session. Type commands on stdin:

  challenge <user>   send a challenge
  accept | decline   answer the pending invite
  act <skill>        take your turn
  surrender          give up the running battle
  dismiss            clear a finished battle
  status             print the current view
  quit`

var battleCmd = &cobra.Command{
	Use:   "battle",
	Short: "PvP arena commands",
}

var battlePlayCmd = &cobra.Command{
	Use:   "play",
	Short: "Open an interactive battle session",
	Long:  battlePlayHelp,
	Args: cobra.NoArgs,
	RunE: runBattlePlay,
}

var battleCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "List your pending and running battles",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewArenaClient(conn).Current(ctx, &v1alpha1.CurrentRequest{})
			if err != nil {
				return err
			}
			printBattles(resp.Battles)
			return nil
		})
	},
}

var battleRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the newest battles on the server (admin)",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewArenaClient(conn).ListRecent(ctx, &v1alpha1.ListRecentRequest{Limit: recentLimit})
			if err != nil {
				return err
			}
			printBattles(resp.Battles)
			return nil
		})
	},
}

var battleStopCmd = &cobra.Command{
	Use:   "stop <battle-id>",
	Short: "Force a battle to finish with no winner (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewArenaClient(conn).AdminStop(ctx, &v1alpha1.BattleRequest{BattleID: args[0]})
			if err != nil {
				return err
			}
			printBattle(resp.Battle)
			return nil
		})
	},
}

var battleDeleteCmd = &cobra.Command{
	Use:   "delete <battle-id>",
	Short: "Remove a battle record (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			if _, err := v1alpha1.NewArenaClient(conn).AdminDelete(ctx, &v1alpha1.BattleRequest{BattleID: args[0]}); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		})
	},
}

var battleSetHPCmd = &cobra.Command{
	Use:   "set-hp <battle-id> <p1-hp> <p2-hp>",
	Short: "Override both sides' hp (admin)",
	Args:  cobra.ExactArgs(3),
	RunE: func(_ *cobra.Command, args []string) error {
		p1, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid p1 hp %q: %w", args[1], err)
		}
		p2, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid p2 hp %q: %w", args[2], err)
		}
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewArenaClient(conn).AdminSetHP(ctx, &v1alpha1.AdminSetHPRequest{
				BattleID: args[0],
				P1HP:     p1,
				P2HP:     p2,
			})
			if err != nil {
				return err
			}
			printBattle(resp.Battle)
			return nil
		})
	},
}

func init() {
	battlePlayCmd.Flags().DurationVar(&pollInterval, "poll", session.DefaultPollInterval, "fallback poll interval")
	battleRecentCmd.Flags().IntVar(&recentLimit, "limit", 20, "number of battles to list")

	battleCmd.AddCommand(battlePlayCmd)
	battleCmd.AddCommand(battleCurrentCmd)
	battleCmd.AddCommand(battleRecentCmd)
	battleCmd.AddCommand(battleStopCmd)
	battleCmd.AddCommand(battleDeleteCmd)
	battleCmd.AddCommand(battleSetHPCmd)
}

func runBattlePlay(*cobra.Command, []string) error {
	conn, err := createConnection()
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client, err := arena.New(&arena.Config{Conn: conn, Username: username, Logger: logger})
	if err != nil {
		return err
	}
	sess, err := session.New(&session.Config{
		Arena:        client,
		Username:     username,
		PollInterval: pollInterval,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run(ctx) }()
	go printUpdates(ctx, sess.Updates())

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Printf("Battle session for %s. Type 'help' for commands.\n", username)
	for {
		select {
		case <-ctx.Done():
			if err := <-runErr; !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case err := <-runErr:
			return err
		case line, ok := <-lines:
			if !ok {
				stop()
				continue
			}
			quit, err := battleCommand(ctx, sess, line)
			if err != nil {
				fmt.Printf("! %v\n", describe(err))
			}
			if quit {
				stop()
			}
		}
	}
}

func battleCommand(ctx context.Context, sess *session.Session, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch fields[0] {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Println(battlePlayHelp)
		return false, nil
	case "status":
		printView(sess.State())
		return false, nil
	case "challenge":
		if len(fields) != 2 {
			return false, errors.InvalidArgument("usage: challenge <user>")
		}
		return false, sess.Challenge(callCtx, fields[1])
	case "accept":
		return false, sess.Accept(callCtx)
	case "decline":
		return false, sess.Decline(callCtx)
	case "act":
		if len(fields) < 2 {
			return false, errors.InvalidArgument("usage: act <skill>")
		}
		return false, sess.Act(callCtx, strings.Join(fields[1:], " "))
	case "surrender":
		return false, sess.Surrender(callCtx)
	case "dismiss":
		return false, sess.Dismiss(callCtx)
	default:
		return false, errors.InvalidArgumentf("unknown command %q", fields[0])
	}
}

func printUpdates(ctx context.Context, updates <-chan session.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-updates:
			for _, cue := range u.Cues {
				e := cue.Entry
				fmt.Printf("> T%d %s used %s: %s (%d, %s)\n", e.Turn, e.Actor, e.Skill, e.Description, e.Damage, e.Effect)
			}
			printNotices(u.Notices)
			printView(u.State)
		}
	}
}

func printView(s session.State) {
	if s.Invite != nil {
		fmt.Printf("* %s challenges you (accept/decline)\n", s.Invite.Challenger)
	}
	if s.Outgoing != nil {
		fmt.Printf("* waiting for %s to answer\n", s.Outgoing.Target)
	}
	if s.Active != nil {
		printBattle(s.Active)
	}
}

func printBattles(battles []*entities.BattleRecord) {
	if len(battles) == 0 {
		fmt.Println("No battles.")
		return
	}
	for _, b := range battles {
		printBattle(b)
	}
}

func printBattle(b *entities.BattleRecord) {
	if b == nil {
		return
	}
	fmt.Printf("[%s] %s vs %s  %s  HP %d/%d vs %d/%d  EN %d vs %d",
		b.ID, b.Challenger, b.Target, b.Status, b.P1HP, b.P1MaxHP, b.P2HP, b.P2MaxHP, b.P1Energy, b.P2Energy)
	switch {
	case b.Status == entities.BattleStatusInProgress:
		fmt.Printf("  turn: %s", b.Turn)
	case b.Winner != "":
		fmt.Printf("  winner: %s", b.Winner)
	}
	fmt.Println()
}
