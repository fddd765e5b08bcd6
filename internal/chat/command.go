package chat

import "strings"

const (
	usageNotify = "Usage: /notify <True|False>"
	usageMsg    = "Usage: /msg <username> <message>"
)

// ParseLine classifies one line of client input. It is pure: no registry
// access, no side effects, which keeps the grammar trivially testable.
//
// A line that merely contains a command elsewhere than at its start is
// ordinary chat text, as is any unrecognized /token.
func ParseLine(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "/exit":
		return Command{Kind: CmdExit}, nil

	case trimmed == "/users":
		return Command{Kind: CmdListUsers}, nil

	case strings.HasPrefix(trimmed, "/help"):
		return Command{Kind: CmdHelp}, nil

	case trimmed == "/notify" || strings.HasPrefix(trimmed, "/notify "):
		arg := strings.TrimSpace(strings.TrimPrefix(trimmed, "/notify"))
		switch arg {
		case "True":
			return Command{Kind: CmdSetNotify, Notify: true}, nil
		case "False":
			return Command{Kind: CmdSetNotify, Notify: false}, nil
		default:
			return Command{}, &MalformedCommandError{Usage: usageNotify}
		}

	case trimmed == "/msg" || strings.HasPrefix(trimmed, "/msg "):
		rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "/msg"))
		recipient, text, found := strings.Cut(rest, " ")
		text = strings.TrimSpace(text)
		if !found || recipient == "" || text == "" {
			return Command{}, &MalformedCommandError{Usage: usageMsg}
		}
		return Command{Kind: CmdPrivateMessage, Recipient: recipient, Text: text}, nil

	default:
		return Command{Kind: CmdPlainText, Text: trimmed}, nil
	}
}
