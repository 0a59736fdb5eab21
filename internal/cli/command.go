package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is a main menu action.
type Command int

const (
	CmdView Command = iota + 1
	CmdSearch
	CmdCreate
	CmdEdit
	CmdDelete
	CmdGenerate
	CmdExport
	CmdImport
	CmdChangeMaster
	CmdSettings
	CmdHelp
	CmdExit
)

// allCommands lists commands in menu order; the menu number is the index
// plus one.
var allCommands = []Command{
	CmdView, CmdSearch, CmdCreate, CmdEdit, CmdDelete, CmdGenerate,
	CmdExport, CmdImport, CmdChangeMaster, CmdSettings, CmdHelp, CmdExit,
}

type commandInfo struct {
	name    string
	aliases []string
	summary string
}

var commandTable = map[Command]commandInfo{
	CmdView:         {"view", []string{"list", "ls", "l"}, "list entries and reveal a password"},
	CmdSearch:       {"search", []string{"find", "s"}, "search entries"},
	CmdCreate:       {"create", []string{"add", "new"}, "add a password entry"},
	CmdEdit:         {"edit", []string{"update"}, "edit an entry"},
	CmdDelete:       {"delete", []string{"rm", "del"}, "delete an entry"},
	CmdGenerate:     {"generate", []string{"gen"}, "generate a random password"},
	CmdExport:       {"export", []string{"backup"}, "export a backup file"},
	CmdImport:       {"import", []string{"restore"}, "import a backup file"},
	CmdChangeMaster: {"change-master", []string{"passwd", "rotate"}, "change the master code"},
	CmdSettings:     {"settings", []string{"prefs"}, "change preferences"},
	CmdHelp:         {"help", []string{"?", "menu"}, "show this menu"},
	CmdExit:         {"exit", []string{"quit", "q"}, "leave the program"},
}

var commandsByName = func() map[string]Command {
	m := make(map[string]Command)
	for i, c := range allCommands {
		info := commandTable[c]
		m[info.name] = c
		m[strconv.Itoa(i+1)] = c
		for _, a := range info.aliases {
			m[a] = c
		}
	}
	return m
}()

func (c Command) String() string {
	if info, ok := commandTable[c]; ok {
		return info.name
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// parseCommand resolves a name, alias or menu number, ignoring case.
func parseCommand(s string) (Command, bool) {
	c, ok := commandsByName[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

func menuText() string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for i, c := range allCommands {
		fmt.Fprintf(&b, "  %2d. %-14s %s\n", i+1, c, commandTable[c].summary)
	}
	return strings.TrimRight(b.String(), "\n")
}
