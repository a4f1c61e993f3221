package narrative

import (
	"strings"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
)

type command int

const (
	commandNone command = iota
	commandUnlock
	commandLock
	commandNSFW
	commandSFW
)

var commandWords = map[string]command{
	"unlock": commandUnlock,
	"open":   commandUnlock,
	"lock":   commandLock,
	"close":  commandLock,
	"nsfw":   commandNSFW,
	"sfw":    commandSFW,
	"normal": commandSFW,
}

// parseCommand matches a whole message against the command words, with or
// without a leading slash
func parseCommand(message string) command {
	word := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(message)), "/")
	return commandWords[word]
}

// commandResult is what a command does to the settings and history
type commandResult struct {
	settings entities.Settings
	// turn is appended to the history when set
	turn   string
	notice entities.Notice
}

// applyCommand flips the narrative toggles. NSFW can only be enabled with the
// firewall down, and locking always turns NSFW off.
func applyCommand(cmd command, settings entities.Settings) commandResult {
	out := commandResult{settings: settings}
	switch cmd {
	case commandUnlock:
		out.settings.Firewall = false
		out.turn = "[ADMIN COMMAND]: Unlock Firewall."
		out.notice = entities.Notice{Type: entities.NoticeCommand, Text: "Firewall disabled. Proceed with caution."}
	case commandLock:
		out.settings.Firewall = true
		out.settings.NSFW = false
		out.turn = "[ADMIN COMMAND]: Lock Firewall."
		out.notice = entities.Notice{Type: entities.NoticeCommand, Text: "Firewall enabled."}
	case commandNSFW:
		if settings.Firewall {
			out.notice = entities.Notice{Type: entities.NoticeSystem, Text: "The firewall is on; unfiltered mode cannot be enabled."}
			return out
		}
		out.settings.NSFW = true
		out.turn = "[SYSTEM]: Enabling Unfiltered Mode (NSFW). Safety protocols disengaged."
		out.notice = entities.Notice{Type: entities.NoticeCommand, Text: "Unfiltered mode enabled."}
	case commandSFW:
		out.settings.NSFW = false
		out.notice = entities.Notice{Type: entities.NoticeCommand, Text: "Safe mode restored."}
	}
	return out
}
