package mail_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/mail"
	"github.com/KirkDiggler/rpg-narrator/internal/testutils"
)

type GormMailTestSuite struct {
	suite.Suite
	repo mail.Repository
	ctx  context.Context
	now  time.Time
}

func TestGormMailSuite(t *testing.T) {
	suite.Run(t, new(GormMailTestSuite))
}

func (s *GormMailTestSuite) SetupTest() {
	db := testutils.CreateTestDB(s.T(), mail.Migrate)
	s.ctx = context.Background()
	s.now = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	repo, err := mail.NewGorm(&mail.Config{DB: db, ServerID: testutils.TestServerID})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *GormMailTestSuite) send(id string, at time.Time, attachment *entities.Attachment) {
	_, err := s.repo.Create(s.ctx, mail.CreateInput{Mail: &entities.Mail{
		ID:         id,
		Sender:     "guy",
		Recipient:  "rimuru",
		Title:      "Gift " + id,
		Body:       "For you",
		Attachment: attachment,
		CreatedAt:  at,
	}})
	s.Require().NoError(err)
}

func (s *GormMailTestSuite) TestCreateAndGet() {
	s.send("m1", s.now, &entities.Attachment{Type: entities.AttachmentItem, Name: "Magic Ore"})

	out, err := s.repo.Get(s.ctx, mail.GetInput{ID: "m1", Recipient: "rimuru"})
	s.Require().NoError(err)
	s.Equal("guy", out.Mail.Sender)
	s.Equal(testutils.TestServerID, out.Mail.ServerID)
	s.Require().NotNil(out.Mail.Attachment)
	s.Equal("Magic Ore", out.Mail.Attachment.Name)
	s.False(out.Mail.IsClaimed)
}

func (s *GormMailTestSuite) TestCreateDuplicate() {
	s.send("m1", s.now, nil)

	_, err := s.repo.Create(s.ctx, mail.CreateInput{Mail: &entities.Mail{ID: "m1", Recipient: "rimuru"}})
	s.True(errors.IsAlreadyExists(err))
}

func (s *GormMailTestSuite) TestGetIsScopedToRecipient() {
	s.send("m1", s.now, nil)

	_, err := s.repo.Get(s.ctx, mail.GetInput{ID: "m1", Recipient: "milim"})
	s.True(errors.IsNotFound(err))
}

func (s *GormMailTestSuite) TestListNewestFirstAndUnread() {
	s.send("m1", s.now, nil)
	s.send("m2", s.now.Add(time.Minute), nil)

	_, err := s.repo.MarkRead(s.ctx, mail.MarkReadInput{ID: "m2", Recipient: "rimuru"})
	s.Require().NoError(err)

	all, err := s.repo.List(s.ctx, mail.ListInput{Recipient: "rimuru"})
	s.Require().NoError(err)
	s.Require().Len(all.Mails, 2)
	s.Equal("m2", all.Mails[0].ID)
	s.True(all.Mails[0].IsRead)

	unread, err := s.repo.List(s.ctx, mail.ListInput{Recipient: "rimuru", UnreadOnly: true})
	s.Require().NoError(err)
	s.Require().Len(unread.Mails, 1)
	s.Equal("m1", unread.Mails[0].ID)
}

func (s *GormMailTestSuite) TestMarkClaimedOnce() {
	s.send("m1", s.now, &entities.Attachment{Type: entities.AttachmentSkill, Name: "Raphael"})

	first, err := s.repo.MarkClaimed(s.ctx, mail.MarkClaimedInput{ID: "m1", Recipient: "rimuru"})
	s.Require().NoError(err)
	s.True(first.Changed)
	s.True(first.Mail.IsClaimed)
	s.True(first.Mail.IsRead)

	second, err := s.repo.MarkClaimed(s.ctx, mail.MarkClaimedInput{ID: "m1", Recipient: "rimuru"})
	s.Require().NoError(err)
	s.False(second.Changed)
}

func (s *GormMailTestSuite) TestMarkClaimedMissing() {
	_, err := s.repo.MarkClaimed(s.ctx, mail.MarkClaimedInput{ID: "nope", Recipient: "rimuru"})
	s.True(errors.IsNotFound(err))
}

func (s *GormMailTestSuite) TestDelete() {
	s.send("m1", s.now, nil)

	_, err := s.repo.Delete(s.ctx, mail.DeleteInput{ID: "m1", Recipient: "rimuru"})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, mail.DeleteInput{ID: "m1", Recipient: "rimuru"})
	s.True(errors.IsNotFound(err))
}

func (s *GormMailTestSuite) TestValidation() {
	_, err := s.repo.Get(s.ctx, mail.GetInput{Recipient: "rimuru"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.List(s.ctx, mail.ListInput{})
	s.True(errors.IsInvalidArgument(err))
}
