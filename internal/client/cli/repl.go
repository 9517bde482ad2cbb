package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output of the loop itself.
var printlnFn = fmt.Println

type command func(ctx context.Context, args []string) error

// execIface is the minimal surface the REPL needs. App satisfies it; tests
// provide a stub.
type execIface interface {
	isLoggedIn() bool
	commands() map[string]command
}

// publicCommands work without a session.
var publicCommands = map[string]bool{"login": true, "metrics": true}

const (
	helpLoggedOut = "Available commands: login, metrics, exit"
	helpLoggedIn  = "Available commands: get [n], refresh, sync, show <key>, save [date], topic [name], " +
		"delete <id>, stats, state, retention, days <n>, autoclean on|off, cleanup, wipe, metrics, logout, exit"
)

// runREPL reads commands line by line and dispatches them to a until EOF or
// "exit"/"quit". Handlers print their own errors; the loop ignores them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	cmds := a.commands()
	for {
		printlnFn(fmt.Sprintf("journal %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := cmds[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if !a.isLoggedIn() && !publicCommands[name] {
			printlnFn("Please login first")
			continue
		}
		_ = cmd(ctx, args)
	}
}

func (a *App) commands() map[string]command {
	return map[string]command{
		"login":     a.Login,
		"logout":    a.Logout,
		"get":       a.Get,
		"l":         a.Get,
		"refresh":   a.Refresh,
		"sync":      a.Sync,
		"show":      a.Show,
		"save":      a.Save,
		"topic":     a.Topic,
		"delete":    a.Delete,
		"stats":     a.Stats,
		"state":     a.State,
		"retention": a.Retention,
		"days":      a.Days,
		"autoclean": a.AutoClean,
		"cleanup":   a.Cleanup,
		"wipe":      a.Wipe,
		"metrics":   a.Metrics,
	}
}
