package narrative

import (
	"fmt"
	"slices"
	"strings"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/reconciler"
)

// ultimateSkills is the mystery box prize pool, one entry per die face
var ultimateSkills = []string{
	"Raphael, Lord of Wisdom",
	"Uriel, Lord of Vows",
	"Michael, Lord of Justice",
	"Sariel, Lord of Hope",
	"Metatron, Lord of Purity",
	"Raguel, Lord of Salvation",
	"Gabriel, Lord of Patience",
	"Beelzebuth, Lord of Gluttony",
	"Lucifer, Lord of Pride",
	"Mammon, Lord of Greed",
	"Satanael, Lord of Wrath",
	"Leviathan, Lord of Envy",
	"Belphegor, Lord of Sloth",
	"Asmodeus, Lord of Lust",
	"Veldora, Lord of Storms",
}

func isMysteryBox(item string) bool {
	return strings.Contains(strings.ToLower(item), "mystery box")
}

// openMysteryBox consumes the box and awards one ultimate skill without a
// narrative round trip. A skill the character already knows is lost.
func (o *orchestrator) openMysteryBox(s *session, item string) (*TurnOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return nil, errors.Dead(s.username)
	}

	current := s.save.Character.Status
	i := slices.Index(current.Inventory, item)
	if i < 0 {
		return nil, errors.NotFoundf("%q is not in the inventory", item)
	}

	roll, err := o.roller.Roll(len(ultimateSkills))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open the mystery box")
	}
	if roll < 1 || roll > len(ultimateSkills) {
		return nil, errors.Internal(fmt.Sprintf("mystery box roll %d out of range", roll))
	}
	skill := ultimateSkills[roll-1]

	proposed := entities.UpdateFromStatus(current)
	proposed.Inventory = slices.Delete(slices.Clone(current.Inventory), i, i+1)
	known := current.HasSkill(skill)
	if !known {
		proposed.Skills = append(proposed.Skills, skill)
	}

	res := o.reconciler.Reconcile(&reconciler.Input{
		Previous:  current,
		Proposed:  proposed,
		Inventory: current.Inventory,
	})
	s.save.Character.Status = res.Status

	notices := res.Notices
	if known {
		notices = append(notices, entities.Notice{
			Type: entities.NoticeSystem,
			Text: fmt.Sprintf("The box held %s, which you already command.", skill),
		})
	} else {
		s.appendTurn(entities.ChatRoleModel,
			fmt.Sprintf("[SYSTEM] Ultimate skill awakened: %s.", skill), o.clock.Now())
	}
	o.scheduleSave(s)

	o.logger.Info("mystery box opened",
		"username", s.username,
		"skill", skill,
		"duplicate", known)

	return &TurnOutput{State: s.state(), Notices: notices}, nil
}
