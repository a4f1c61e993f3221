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
	mailUnreadOnly bool
	mailLimit      int
	mailItem       string
	mailSkill      string
)

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Mailbox commands",
}

var mailListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your mail, newest first",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewMailClient(conn).List(ctx, &v1alpha1.ListMailRequest{
				UnreadOnly: mailUnreadOnly,
				Limit:      mailLimit,
			})
			if err != nil {
				return err
			}
			if len(resp.Mails) == 0 {
				fmt.Println("Mailbox is empty.")
			}
			for _, m := range resp.Mails {
				printMailLine(m)
			}
			return nil
		})
	},
}

var mailReadCmd = &cobra.Command{
	Use:   "read <mail-id>",
	Short: "Read one mail and mark it read",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewMailClient(conn).MarkRead(ctx, &v1alpha1.MailRequest{MailID: args[0]})
			if err != nil {
				return err
			}
			printMailLine(resp.Mail)
			fmt.Printf("\n%s\n", resp.Mail.Body)
			return nil
		})
	},
}

var mailClaimCmd = &cobra.Command{
	Use:   "claim <mail-id>",
	Short: "Claim a mail attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewMailClient(conn).Claim(ctx, &v1alpha1.MailRequest{MailID: args[0]})
			if err != nil {
				return err
			}
			if a := resp.Mail.Attachment; a != nil {
				fmt.Printf("Claimed %s %s\n", strings.ToLower(string(a.Type)), a.Name)
			}
			printNotices(resp.Notices)
			return nil
		})
	},
}

var mailDeleteCmd = &cobra.Command{
	Use:   "delete <mail-id>",
	Short: "Delete one mail",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			if _, err := v1alpha1.NewMailClient(conn).Delete(ctx, &v1alpha1.MailRequest{MailID: args[0]}); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		})
	},
}

var mailSendCmd = &cobra.Command{
	Use:   "send <recipient> <title> <body>",
	Short: "Send a mail (admin), optionally with one attachment",
	Args:  cobra.ExactArgs(3),
	RunE: func(_ *cobra.Command, args []string) error {
		if mailItem != "" && mailSkill != "" {
			return fmt.Errorf("a mail carries at most one attachment")
		}
		req := &v1alpha1.SendMailRequest{Recipient: args[0], Title: args[1], Body: args[2]}
		switch {
		case mailItem != "":
			req.Attachment = &entities.Attachment{Type: entities.AttachmentItem, Name: mailItem}
		case mailSkill != "":
			req.Attachment = &entities.Attachment{Type: entities.AttachmentSkill, Name: mailSkill}
		}
		return withConn(func(ctx context.Context, conn *grpc.ClientConn) error {
			resp, err := v1alpha1.NewMailClient(conn).Send(ctx, req)
			if err != nil {
				return err
			}
			fmt.Printf("Sent %s to %s\n", resp.Mail.ID, resp.Mail.Recipient)
			return nil
		})
	},
}

func init() {
	mailListCmd.Flags().BoolVar(&mailUnreadOnly, "unread", false, "only unread mail")
	mailListCmd.Flags().IntVar(&mailLimit, "limit", 20, "number of mails to list")
	mailSendCmd.Flags().StringVar(&mailItem, "item", "", "attach an item")
	mailSendCmd.Flags().StringVar(&mailSkill, "skill", "", "attach a skill")

	mailCmd.AddCommand(mailListCmd)
	mailCmd.AddCommand(mailReadCmd)
	mailCmd.AddCommand(mailClaimCmd)
	mailCmd.AddCommand(mailDeleteCmd)
	mailCmd.AddCommand(mailSendCmd)
}

func printMailLine(m *entities.Mail) {
	flag := " "
	if !m.IsRead {
		flag = "*"
	}
	attachment := ""
	if m.Attachment != nil {
		attachment = fmt.Sprintf("  +%s", m.Attachment.Name)
		if m.IsClaimed {
			attachment += " (claimed)"
		}
	}
	fmt.Printf("%s %s  %s  from %s%s\n", flag, m.ID, m.Title, m.Sender, attachment)
}
