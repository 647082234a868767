// internal/dispatch/command.go
package dispatch

import (
	"strings"
	"unicode"
)

// HelpCommand is the one command that is not a site search.
const HelpCommand = "help"

// Command is the parsed intent of an inbound chat message.
type Command struct {
	Name string // "help" or a site slug
	Arg  string // search query, empty for help
}

// ParseCommand splits text on the first run of whitespace. A first token
// matching "help" or a known site slug selects that command with the
// remainder as its argument; anything else becomes a search on the default
// site with the whole message, untouched, as the query.
func ParseCommand(text, defaultSite string, isKnownSite func(string) bool) Command {
	trimmed := strings.TrimSpace(text)
	first := trimmed
	rest := ""
	if i := strings.IndexFunc(trimmed, unicode.IsSpace); i >= 0 {
		first = trimmed[:i]
		rest = strings.TrimLeftFunc(trimmed[i:], unicode.IsSpace)
	}

	if first == HelpCommand {
		return Command{Name: HelpCommand}
	}
	if isKnownSite(first) {
		return Command{Name: first, Arg: rest}
	}
	return Command{Name: defaultSite, Arg: text}
}
