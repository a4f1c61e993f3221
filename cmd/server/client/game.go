package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/KirkDiggler/rpg-narrator/internal/handlers/v1alpha1"
)

var (
	startRace       string
	startSkill      string
	startLocation   string
	startDifficulty string
)

var startCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Start a new game, replacing any existing save",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewNarrativeClient(conn).StartGame(ctx, &v1alpha1.StartGameRequest{
				Name:        args[0],
				Race:        startRace,
				UniqueSkill: startSkill,
				Location:    startLocation,
				Difficulty:  startDifficulty,
			})
			if err != nil {
				return err
			}
			if resp.Degraded {
				fmt.Println("(narrator unavailable, using the offline intro)")
			}
			printState(resp.State)
			if n := len(resp.State.History); n > 0 {
				fmt.Printf("\n%s\n", resp.State.History[n-1].Text)
			}
			return nil
		})
	},
}

var sayCmd = &cobra.Command{
	Use:   "say <message...>",
	Short: "Submit one message to the narrator",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewNarrativeClient(conn).Submit(ctx, &v1alpha1.SubmitRequest{
				Message: strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			printTurn(resp)
			return nil
		})
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the current character",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewNarrativeClient(conn).GetState(ctx, &v1alpha1.GameRequest{})
			if err != nil {
				return err
			}
			printState(resp.State)
			return nil
		})
	},
}

var skillCmd = &cobra.Command{
	Use:   "skill <name>",
	Short: "Use a learned skill",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewNarrativeClient(conn).UseSkill(ctx, &v1alpha1.UseSkillRequest{Skill: args[0]})
			if err != nil {
				return err
			}
			printTurn(resp)
			return nil
		})
	},
}

var itemCmd = &cobra.Command{
	Use:   "item <name>",
	Short: "Use an inventory item",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewNarrativeClient(conn).UseItem(ctx, &v1alpha1.UseItemRequest{Item: args[0]})
			if err != nil {
				return err
			}
			printTurn(resp)
			return nil
		})
	},
}

var equipCmd = &cobra.Command{
	Use:   "equip <skill...>",
	Short: "Replace the equipped skill set",
	RunE: func(_ *cobra.Command, args []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewNarrativeClient(conn).EquipSkills(ctx, &v1alpha1.EquipSkillsRequest{Skills: args})
			if err != nil {
				return err
			}
			fmt.Printf("Equipped: %s\n", strings.Join(resp.State.Character.Status.EquippedSkills, ", "))
			return nil
		})
	},
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Flush the game to storage now",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewNarrativeClient(conn).Save(ctx, &v1alpha1.GameRequest{})
			if err != nil {
				return err
			}
			fmt.Printf("Saved at %s\n", resp.LastSaved.Format("2006-01-02 15:04:05"))
			return nil
		})
	},
}

var appraiseCmd = &cobra.Command{
	Use:   "appraise",
	Short: "Ask the narrator to rate the character",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewNarrativeClient(conn).Appraise(ctx, &v1alpha1.GameRequest{})
			if err != nil {
				return err
			}
			a := resp.Appraisal
			fmt.Printf("%s [%s] worth %s\n%s\n", a.TargetName, a.Rank, a.EstimatedValue, a.Description)
			return nil
		})
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List nearby entities",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewNarrativeClient(conn).Scan(ctx, &v1alpha1.GameRequest{})
			if err != nil {
				return err
			}
			if len(resp.Entities) == 0 {
				fmt.Println("Nothing nearby.")
			}
			for _, e := range resp.Entities {
				fmt.Printf("  %-20s %-8s %-10s %s\n", e.Name, e.MagicLevel, e.Distance, e.Hostility)
			}
			return nil
		})
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <term...>",
	Short: "Explain a term from the story",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewNarrativeClient(conn).AnalyzeEntity(ctx, &v1alpha1.AnalyzeEntityRequest{
				Term: strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			e := resp.Entity
			fmt.Printf("%s (%s)\n%s\n", e.Name, e.Type, e.Description)
			if e.Usage != "" {
				fmt.Printf("Usage: %s\n", e.Usage)
			}
			if e.Origin != "" {
				fmt.Printf("Origin: %s\n", e.Origin)
			}
			return nil
		})
	},
}

func init() {
	startCmd.Flags().StringVar(&startRace, "race", "Human", "starting race")
	startCmd.Flags().StringVar(&startSkill, "skill", "", "unique skill")
	startCmd.Flags().StringVar(&startLocation, "location", "", "starting location")
	startCmd.Flags().StringVar(&startDifficulty, "difficulty", "normal", "easy, normal or hard")
}

func printState(state *v1alpha1.GameState) {
	if state == nil {
		return
	}
	c := state.Character
	st := c.Status
	fmt.Printf("%s the %s (Lv %d, %s)\n", c.Name, c.Race, st.Level, st.EvolutionStage)
	fmt.Printf("  HP %d/%d  MP %d/%d\n", st.HP, st.MaxHP, st.MP, st.MaxMP)
	fmt.Printf("  Skills:    %s\n", strings.Join(st.Skills, ", "))
	fmt.Printf("  Equipped:  %s\n", strings.Join(st.EquippedSkills, ", "))
	fmt.Printf("  Inventory: %s\n", strings.Join(st.Inventory, ", "))
	for _, q := range st.Quests {
		done := " "
		if q.IsCompleted {
			done = "x"
		}
		fmt.Printf("  [%s] %s %d/%d %s\n", done, q.Name, q.Current, q.Required, q.Unit)
	}
	if state.Dead {
		fmt.Println("  ** DEAD **")
	}
}

func printTurn(resp *v1alpha1.TurnResponse) {
	if resp.Degraded {
		fmt.Println("(narrator unavailable)")
	}
	fmt.Printf("%s\n\n", resp.Reply)
	printNotices(resp.Notices)
	printState(resp.State)
}
