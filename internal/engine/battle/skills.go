package battle

import "strings"

// Tier is the power class of a skill
type Tier int

// Skill tiers, weakest first
const (
	TierBasic Tier = iota
	TierEnergy
	TierUltimate
	TierGenesis
)

// BasicAttack is always available and costs nothing
const (
	BasicAttack      = "Đánh thường"
	BasicAttackAlias = "Basic Attack"
)

var ultimateKeywords = []string{
	"thần", "vương", "long", "bạo thực",
	"raphael", "uriel", "michael", "sariel", "metatron", "raguel", "gabriel",
	"beelzebuth", "lucifer", "mammon", "satanael", "leviathan", "belphegor", "asmodeus",
	"veldora",
}

var genesisKeywords = []string{
	"hư không", "azathoth", "cthugha", "sáng thế", "vô hạn", "bất diệt",
	"god", "infinity", "chaos", "void", "∞",
}

// String returns the tier name
func (t Tier) String() string {
	switch t {
	case TierBasic:
		return "BASIC"
	case TierEnergy:
		return "ENERGY"
	case TierUltimate:
		return "ULTIMATE"
	case TierGenesis:
		return "GENESIS"
	default:
		return "UNKNOWN"
	}
}

// EnergyCost is what the actor pays to use a skill of this tier
func (t Tier) EnergyCost() int {
	switch t {
	case TierEnergy:
		return 20
	case TierUltimate:
		return 50
	default:
		return 0
	}
}

// damagePercent is the share of the actor's max hp dealt before the floor
func (t Tier) damagePercent() int {
	switch t {
	case TierEnergy:
		return 20
	case TierUltimate:
		return 40
	default:
		return 10
	}
}

// IsBasicAttack reports whether skill names the basic attack
func IsBasicAttack(skill string) bool {
	return skill == BasicAttack || strings.EqualFold(skill, BasicAttackAlias)
}

// ClassifySkill maps a skill name to its tier. Genesis keywords win over
// ultimate keywords, so "Void Dragon King" is genesis.
func ClassifySkill(skill string) Tier {
	if IsBasicAttack(skill) {
		return TierBasic
	}
	lower := strings.ToLower(skill)
	if containsAny(lower, genesisKeywords) {
		return TierGenesis
	}
	if containsAny(lower, ultimateKeywords) {
		return TierUltimate
	}
	return TierEnergy
}

// IsUltimate reports whether a skill is ultimate class or above. The narrative
// loop uses it to price mana.
func IsUltimate(skill string) bool {
	return ClassifySkill(skill) >= TierUltimate
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
