package ui

import (
	"fmt"
	"strconv"
	"strings"
)

// CommandKind identifies what a line of shell input asks for.
type CommandKind int

const (
	CmdPrompt CommandKind = iota
	CmdEmpty
	CmdQuit
	CmdHelp
	CmdNew
	CmdShow
	CmdSwitch
	CmdDelete
	CmdUnknown
)

// Command is one parsed line of input.
type Command struct {
	Kind CommandKind
	Text string // prompt text, or the unknown command name
	ID   uint64 // session id for /switch and /delete
	Err  error  // set when a command's argument is missing or malformed
}

const helpText = `Commands:
  /new            start a new session
  /show           list sessions
  /switch <id>    continue another session
  /delete <id>    delete a session
  /help           show this help
  quit, exit, q   leave

Anything else is sent to the agent. Ctrl+C cancels a running turn.`

// ParseCommand classifies a line of input.
func ParseCommand(line string) Command {
	text := strings.TrimSpace(line)
	switch strings.ToLower(text) {
	case "":
		return Command{Kind: CmdEmpty}
	case "quit", "exit", "q":
		return Command{Kind: CmdQuit}
	}
	if !strings.HasPrefix(text, "/") {
		return Command{Kind: CmdPrompt, Text: text}
	}

	fields := strings.Fields(text)
	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "/help":
		return Command{Kind: CmdHelp}
	case "/new":
		return Command{Kind: CmdNew}
	case "/show":
		return Command{Kind: CmdShow}
	case "/switch":
		return withID(CmdSwitch, name, args)
	case "/delete":
		return withID(CmdDelete, name, args)
	case "/quit", "/exit":
		return Command{Kind: CmdQuit}
	default:
		return Command{Kind: CmdUnknown, Text: name}
	}
}

func withID(kind CommandKind, name string, args []string) Command {
	if len(args) != 1 {
		return Command{Kind: kind, Err: fmt.Errorf("usage: %s <id>", name)}
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || id == 0 {
		return Command{Kind: kind, Err: fmt.Errorf("%s: %q is not a session id", name, args[0])}
	}
	return Command{Kind: kind, ID: id}
}
