package mail_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-narrator/internal/authz"
	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/mail"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/narrative"
	narrativemock "github.com/KirkDiggler/rpg-narrator/internal/orchestrators/narrative/mock"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-narrator/internal/reconciler"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/accounts"
	mailrepo "github.com/KirkDiggler/rpg-narrator/internal/repositories/mail"
	mailrepomock "github.com/KirkDiggler/rpg-narrator/internal/repositories/mail/mock"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/saves"
	"github.com/KirkDiggler/rpg-narrator/internal/testutils"
)

type MailOrchestratorTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	writer   *narrativemock.MockExternalWriter
	saves    saves.Repository
	accounts accounts.Repository
	mail     mailrepo.Repository
	svc      mail.Service
	ctx      context.Context
}

func TestMailOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(MailOrchestratorTestSuite))
}

func (s *MailOrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.writer = narrativemock.NewMockExternalWriter(s.ctrl)

	fake := clock.NewFake(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	db := testutils.CreateTestDB(s.T(), saves.Migrate, accounts.Migrate, mailrepo.Migrate)

	var err error
	s.saves, err = saves.NewGorm(&saves.Config{DB: db, ServerID: testutils.TestServerID, Clock: fake})
	s.Require().NoError(err)
	s.accounts, err = accounts.NewGorm(&accounts.Config{
		DB:       db,
		ServerID: testutils.TestServerID,
		Admins:   []string{"veldora"},
	})
	s.Require().NoError(err)
	s.mail, err = mailrepo.NewGorm(&mailrepo.Config{DB: db, ServerID: testutils.TestServerID})
	s.Require().NoError(err)

	gate, err := authz.New(&authz.Config{Accounts: s.accounts})
	s.Require().NoError(err)
	rec, err := reconciler.New(nil)
	s.Require().NoError(err)

	s.svc, err = mail.NewOrchestrator(&mail.Config{
		Mail:        s.mail,
		Accounts:    s.accounts,
		Authz:       gate,
		Saves:       s.writer,
		Reconciler:  rec,
		IDGenerator: idgen.NewSequential("mail"),
		Clock:       fake,
		ServerID:    testutils.TestServerID,
	})
	s.Require().NoError(err)

	// external writes land straight in the save ledger
	s.writer.EXPECT().ApplyExternal(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, in *narrative.ApplyExternalInput) (*narrative.ApplyExternalOutput, error) {
			out, err := s.saves.Update(ctx, saves.UpdateInput{Username: in.Username, OnceKey: in.OnceKey, Mutate: in.Mutate})
			if err != nil {
				return nil, err
			}
			return &narrative.ApplyExternalOutput{Save: out.Save, Applied: out.Applied}, nil
		}).AnyTimes()

	for _, name := range []string{"rimuru", "milim", "veldora"} {
		_, err := s.accounts.Ensure(s.ctx, accounts.EnsureInput{Username: name})
		s.Require().NoError(err)
	}
	_, err = s.saves.Put(s.ctx, saves.PutInput{Save: &entities.SaveData{
		Username: "rimuru",
		Character: entities.Character{
			Name: "Rimuru",
			Status: entities.CharacterStatus{
				HP:        80,
				MaxHP:     100,
				MP:        40,
				MaxMP:     50,
				Skills:    []string{"Predator"},
				Inventory: []string{"Hipokute Herb"},
			},
		},
		History: []entities.ChatTurn{},
	}})
	s.Require().NoError(err)
}

func (s *MailOrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *MailOrchestratorTestSuite) send(attachment *entities.Attachment) *entities.Mail {
	out, err := s.svc.Send(s.ctx, &mail.SendInput{
		Caller:     "veldora",
		Recipient:  "rimuru",
		Title:      "A gift",
		Body:       "From the storm dragon.",
		Attachment: attachment,
	})
	s.Require().NoError(err)
	return out.Mail
}

func (s *MailOrchestratorTestSuite) status() entities.CharacterStatus {
	out, err := s.saves.Get(s.ctx, saves.GetInput{Username: "rimuru"})
	s.Require().NoError(err)
	return out.Save.Character.Status
}

func (s *MailOrchestratorTestSuite) TestSendValidation() {
	testCases := []struct {
		name  string
		input *mail.SendInput
		check func(error) bool
	}{
		{
			name:  "not an admin",
			input: &mail.SendInput{Caller: "milim", Recipient: "rimuru", Title: "hi"},
			check: errors.IsPermissionDenied,
		},
		{
			name:  "missing title",
			input: &mail.SendInput{Caller: "veldora", Recipient: "rimuru"},
			check: errors.IsInvalidArgument,
		},
		{
			name: "unknown attachment type",
			input: &mail.SendInput{
				Caller: "veldora", Recipient: "rimuru", Title: "hi",
				Attachment: &entities.Attachment{Type: "GOLD", Name: "coins"},
			},
			check: errors.IsInvalidArgument,
		},
		{
			name: "token as skill",
			input: &mail.SendInput{
				Caller: "veldora", Recipient: "rimuru", Title: "hi",
				Attachment: &entities.Attachment{Type: entities.AttachmentSkill, Name: entities.InfinityTokenName},
			},
			check: errors.IsInvalidArgument,
		},
		{
			name:  "unknown recipient",
			input: &mail.SendInput{Caller: "veldora", Recipient: "nobody", Title: "hi"},
			check: func(err error) bool { return errors.HasReason(err, errors.ReasonInvalidTarget) },
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.svc.Send(s.ctx, tc.input)
			s.Require().Error(err)
			s.True(tc.check(err), "got %v", err)
		})
	}
}

func (s *MailOrchestratorTestSuite) TestSendListAndRead() {
	sent := s.send(nil)
	s.Equal("mail_1", sent.ID)
	s.Equal("veldora", sent.Sender)

	list, err := s.svc.List(s.ctx, &mail.ListInput{Caller: "rimuru", UnreadOnly: true})
	s.Require().NoError(err)
	s.Require().Len(list.Mails, 1)

	read, err := s.svc.MarkRead(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: sent.ID})
	s.Require().NoError(err)
	s.True(read.Mail.IsRead)

	list, err = s.svc.List(s.ctx, &mail.ListInput{Caller: "rimuru", UnreadOnly: true})
	s.Require().NoError(err)
	s.Empty(list.Mails)

	// another player's mailbox does not see it
	list, err = s.svc.List(s.ctx, &mail.ListInput{Caller: "milim"})
	s.Require().NoError(err)
	s.Empty(list.Mails)
}

func (s *MailOrchestratorTestSuite) TestClaimItemOnce() {
	sent := s.send(&entities.Attachment{Type: entities.AttachmentItem, Name: "Magic Ore"})

	out, err := s.svc.Claim(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: sent.ID})
	s.Require().NoError(err)
	s.True(out.Mail.IsClaimed)
	s.Equal([]string{"Hipokute Herb", "Magic Ore"}, out.Status.Inventory)

	_, err = s.svc.Claim(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: sent.ID})
	s.True(errors.HasReason(err, errors.ReasonAlreadyClaimed))

	stored, err := s.saves.Get(s.ctx, saves.GetInput{Username: "rimuru"})
	s.Require().NoError(err)
	s.Equal([]string{"Hipokute Herb", "Magic Ore"}, stored.Save.Character.Status.Inventory)
	s.Require().Len(stored.Save.History, 1)
	s.Contains(stored.Save.History[0].Text, "Magic Ore")
}

func (s *MailOrchestratorTestSuite) TestClaimSkill() {
	sent := s.send(&entities.Attachment{Type: entities.AttachmentSkill, Name: "Black Lightning"})

	out, err := s.svc.Claim(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: sent.ID})
	s.Require().NoError(err)
	s.Equal([]string{"Predator", "Black Lightning"}, out.Status.Skills)
	s.Require().NotEmpty(out.Notices)
	s.Equal(entities.NoticeSkillEvolved, out.Notices[0].Type)
}

func (s *MailOrchestratorTestSuite) TestClaimAdminTokenActivatesGodMode() {
	sent := s.send(&entities.Attachment{Type: entities.AttachmentItem, Name: entities.InfinityTokenName})

	out, err := s.svc.Claim(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: sent.ID})
	s.Require().NoError(err)
	s.True(out.Status.IsGodMode)
	s.Equal(entities.GodSentinel, out.Status.MaxHP)
	s.Equal(entities.GodEvolutionStage, out.Status.EvolutionStage)
	s.True(entities.HasInfinityToken(s.status().Inventory))
}

func (s *MailOrchestratorTestSuite) TestClaimTokenFromNonAdminDissolves() {
	_, err := s.mail.Create(s.ctx, mailrepo.CreateInput{Mail: &entities.Mail{
		ID:         "forged_1",
		Sender:     "milim",
		Recipient:  "rimuru",
		Title:      "totally real",
		Attachment: &entities.Attachment{Type: entities.AttachmentItem, Name: entities.InfinityTokenName},
		CreatedAt:  time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
	}})
	s.Require().NoError(err)

	out, err := s.svc.Claim(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: "forged_1"})
	s.Require().NoError(err)
	s.False(out.Status.IsGodMode)
	s.False(entities.HasInfinityToken(out.Status.Inventory))
	s.Require().NotEmpty(out.Notices)
	s.Equal(entities.NoticeTamper, out.Notices[0].Type)
	s.Equal(100, s.status().MaxHP)
}

func (s *MailOrchestratorTestSuite) TestClaimAfterLedgerWriteOnlyFlagsMail() {
	sent := s.send(&entities.Attachment{Type: entities.AttachmentItem, Name: "Magic Ore"})

	// the grant landed but the mail flag did not
	_, err := s.saves.Update(s.ctx, saves.UpdateInput{
		Username: "rimuru",
		OnceKey:  "mail:" + sent.ID,
		Mutate: func(cur *entities.SaveData) (*entities.SaveData, error) {
			cur.Character.Status.Inventory = append(cur.Character.Status.Inventory, "Magic Ore")
			return cur, nil
		},
	})
	s.Require().NoError(err)

	_, err = s.svc.Claim(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: sent.ID})
	s.True(errors.HasReason(err, errors.ReasonAlreadyClaimed))

	got, err := s.mail.Get(s.ctx, mailrepo.GetInput{ID: sent.ID, Recipient: "rimuru"})
	s.Require().NoError(err)
	s.True(got.Mail.IsClaimed)
	s.Equal([]string{"Hipokute Herb", "Magic Ore"}, s.status().Inventory)
}

func (s *MailOrchestratorTestSuite) TestClaimWithoutAttachment() {
	sent := s.send(nil)

	_, err := s.svc.Claim(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: sent.ID})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *MailOrchestratorTestSuite) TestClaimWithoutSave() {
	out, err := s.svc.Send(s.ctx, &mail.SendInput{
		Caller:     "veldora",
		Recipient:  "milim",
		Title:      "A gift",
		Attachment: &entities.Attachment{Type: entities.AttachmentItem, Name: "Magic Ore"},
	})
	s.Require().NoError(err)

	_, err = s.svc.Claim(s.ctx, &mail.MailInput{Caller: "milim", MailID: out.Mail.ID})
	s.True(errors.IsFailedPrecondition(err))

	got, err := s.mail.Get(s.ctx, mailrepo.GetInput{ID: out.Mail.ID, Recipient: "milim"})
	s.Require().NoError(err)
	s.False(got.Mail.IsClaimed)
}

func (s *MailOrchestratorTestSuite) TestDeleteIsScopedToRecipient() {
	sent := s.send(nil)

	err := s.svc.Delete(s.ctx, &mail.MailInput{Caller: "milim", MailID: sent.ID})
	s.True(errors.IsNotFound(err))

	s.Require().NoError(s.svc.Delete(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: sent.ID}))

	_, err = s.svc.Claim(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: sent.ID})
	s.True(errors.IsNotFound(err))
}

func (s *MailOrchestratorTestSuite) TestClaimRetryAfterFlagFailureGrantsOnce() {
	repo := mailrepomock.NewMockRepository(s.ctrl)
	gate, err := authz.New(&authz.Config{Accounts: s.accounts})
	s.Require().NoError(err)
	rec, err := reconciler.New(nil)
	s.Require().NoError(err)

	svc, err := mail.NewOrchestrator(&mail.Config{
		Mail:        repo,
		Accounts:    s.accounts,
		Authz:       gate,
		Saves:       s.writer,
		Reconciler:  rec,
		IDGenerator: idgen.NewSequential("mail"),
		ServerID:    testutils.TestServerID,
	})
	s.Require().NoError(err)

	unclaimed := &entities.Mail{
		ID:         "mail_7",
		Sender:     "veldora",
		Recipient:  "rimuru",
		Title:      "A gift",
		Attachment: &entities.Attachment{Type: entities.AttachmentItem, Name: "Magic Ore"},
	}
	repo.EXPECT().Get(gomock.Any(), mailrepo.GetInput{ID: "mail_7", Recipient: "rimuru"}).
		Return(&mailrepo.GetOutput{Mail: unclaimed}, nil).Times(2)

	claimed := *unclaimed
	claimed.IsClaimed = true
	gomock.InOrder(
		repo.EXPECT().MarkClaimed(gomock.Any(), gomock.Any()).
			Return(nil, errors.Unavailable("database is down")),
		repo.EXPECT().MarkClaimed(gomock.Any(), mailrepo.MarkClaimedInput{ID: "mail_7", Recipient: "rimuru"}).
			Return(&mailrepo.MarkClaimedOutput{Mail: &claimed, Changed: true}, nil),
	)

	_, err = svc.Claim(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: "mail_7"})
	s.True(errors.IsUnavailable(err))

	_, err = svc.Claim(s.ctx, &mail.MailInput{Caller: "rimuru", MailID: "mail_7"})
	s.True(errors.HasReason(err, errors.ReasonAlreadyClaimed))

	out, err := s.saves.Get(s.ctx, saves.GetInput{Username: "rimuru"})
	s.Require().NoError(err)
	count := 0
	for _, item := range out.Save.Character.Status.Inventory {
		if item == "Magic Ore" {
			count++
		}
	}
	s.Equal(1, count)
}
