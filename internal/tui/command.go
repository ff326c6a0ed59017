package tui

import "strings"

// Command names.
const (
	CmdSignIn = "signin"
	CmdSignUp = "signup"
	CmdForgot = "forgot"
	CmdAttach = "attach"
	CmdUpload = "upload"
	CmdClear  = "clear"
	CmdLogout = "logout"
	CmdHelp   = "help"
	CmdQuit   = "quit"
)

// Commands lists every command for completion, in help order.
var Commands = []string{CmdSignIn, CmdSignUp, CmdForgot, CmdAttach, CmdUpload, CmdClear, CmdLogout, CmdHelp, CmdQuit}

var aliases = map[string]string{
	"h":       CmdHelp,
	"q":       CmdQuit,
	"login":   CmdSignIn,
	"signout": CmdLogout,
}

// Command represents a parsed command.
type Command struct {
	Name string
	Args []string
}

// ParseCommand parses a command line without the leading ':'. Arguments are
// split on whitespace; double quotes group an argument containing spaces.
func ParseCommand(input string) Command {
	fields := splitArgs(strings.TrimSpace(input))
	if len(fields) == 0 {
		return Command{}
	}
	name := strings.ToLower(fields[0])
	if full, ok := aliases[name]; ok {
		name = full
	}
	return Command{Name: name, Args: fields[1:]}
}

func splitArgs(s string) []string {
	var (
		out    []string
		cur    strings.Builder
		quoted bool
		have   bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			have = true
		case !quoted && (r == ' ' || r == '\t'):
			if have {
				out = append(out, cur.String())
				cur.Reset()
				have = false
			}
		default:
			cur.WriteRune(r)
			have = true
		}
	}
	if have {
		out = append(out, cur.String())
	}
	return out
}
