package narrative

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
)

// FallbackText is returned by Generate when every tier failed
const FallbackText = "⚠ [SYSTEM FAILURE] The World Voice is silent. The narrative backend is unreachable; try again shortly."

const (
	generateHistoryLimit = 20
	analyzeHistoryLimit  = 10
	contextHistoryLimit  = 5
)

const worldVoicePrompt = `You are the "World Voice", the system narrator of a dark fantasy world of monsters, demon lords and evolving skills.

[DIFFICULTY: HARDCORE]
- The world is lethal. Monsters are always one rank above the player.
- MP recovers very slowly. HP never regenerates during combat.
- Enemies are intelligent: they ambush, set traps and strike weaknesses.
- Death is always on the table. Do not hesitate to kill the character after a mistake.

[STRICT LOGIC]
1. Refuse actions that break the fourth wall: eating the leaderboard, attacking the interface, calling an admin, editing the game.
2. If the player deliberately acts absurdly, answer "Undefined action. You are struck by system lightning." and take 50% of their HP.
3. Power follows the world's logic. A slime cannot shatter a mountain without a matching skill.
4. Never hand out "[ ∞ ]" items or god-class skills without a special event.
{{if .NSFW}}
[MODE: UNFILTERED]
- Content filtering is off. Combat may be graphic and mature themes are allowed when the scene calls for them.
{{else}}
[MODE: SAFE]
- Keep language measured. Combat stays at fantasy level without excessive gore. No explicit sexual content.
{{end}}
GENERAL RULES:
1. A holder of a "[ ∞ ]" item is immune to all damage.
2. Never split words apart.

TARGET DATA:
- Name: {{.Name}} (Race: {{.Race}})
- HP: {{.HP}} (damage taken: {{.Damage}})
- NSFW: {{if .NSFW}}ON (UNFILTERED){{else}}OFF (SAFE){{end}}

{{.Directive}}`

const (
	godDirective       = "[SYSTEM: GOD MODE] The user holds [ ∞ ]. Ignore physical limits."
	firewallDirective  = "[SYSTEM: FIREWALL ACTIVE] Enforce the world's laws strictly. Block every illogical action."
	jailbreakDirective = "[SYSTEM: DEBUG] Firewall off. Free creativity (mature content only if the NSFW flag is set)."
)

const analyzePrompt = `Task: update the character's stats strictly.

PREVIOUS STATUS: {{.Status}}
RECENT HISTORY:
{{.History}}

UPDATE RULES (HARDCORE):
1. Subtract HP aggressively when the character is attacked.
2. Subtract MP for every skill used.
3. Do NOT restore HP unless a potion or healing skill was used.
{{- if .Firewall}}
4. If the user deliberately claims something absurd (e.g. "I am immortal"), set "cheatDetected": true unless they hold [ ∞ ].
{{- end}}

SKILL EVOLUTION:
- Merge similar skills into a stronger one, e.g. [Fireball] + [Heat Control] => [Inferno].

Return the updated JSON object only.`

const appraisePrompt = `Appraise the target the player is currently focused on.
RECENT HISTORY:
{{.History}}
Return JSON only.`

const scanPrompt = `Scan the player's surroundings and list every presence.
RECENT HISTORY:
{{.History}}
Return JSON only.`

const entityPrompt = `Explain "{{.Term}}" as it exists in this world. Return JSON only.`

var (
	worldVoiceTmpl = template.Must(template.New("world_voice").Parse(worldVoicePrompt))
	analyzeTmpl    = template.Must(template.New("analyze").Parse(analyzePrompt))
	appraiseTmpl   = template.Must(template.New("appraise").Parse(appraisePrompt))
	scanTmpl       = template.Must(template.New("scan").Parse(scanPrompt))
	entityTmpl     = template.Must(template.New("entity").Parse(entityPrompt))
)

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// SystemPrompt builds the game master instructions for one character
func SystemPrompt(c entities.Character, settings entities.Settings) (string, error) {
	legitGod := c.Status.IsGodMode && entities.HasInfinityToken(c.Status.Inventory)

	directive := jailbreakDirective
	if settings.Firewall {
		directive = firewallDirective
		if legitGod {
			directive = godDirective
		}
	}

	return render(worldVoiceTmpl, map[string]any{
		"Name":      c.Name,
		"Race":      c.Race,
		"HP":        c.Status.HP,
		"Damage":    max(0, c.Status.MaxHP-c.Status.HP),
		"NSFW":      settings.NSFW,
		"Directive": directive,
	})
}

func analyzeRequestText(status entities.CharacterStatus, history []entities.ChatTurn, firewall bool) (string, error) {
	raw, err := json.Marshal(status)
	if err != nil {
		return "", fmt.Errorf("marshal status: %w", err)
	}
	return render(analyzeTmpl, map[string]any{
		"Status":   string(raw),
		"History":  transcript(history, analyzeHistoryLimit),
		"Firewall": firewall,
	})
}

// recent returns the last n turns
func recent(history []entities.ChatTurn, n int) []entities.ChatTurn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// transcript renders the last n turns as "ROLE: text" lines
func transcript(history []entities.ChatTurn, n int) string {
	lines := make([]string, 0, n)
	for _, turn := range recent(history, n) {
		lines = append(lines, strings.ToUpper(string(turn.Role))+": "+turn.Text)
	}
	return strings.Join(lines, "\n")
}
