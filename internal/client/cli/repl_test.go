package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) commands() map[string]command {
	rec := func(name string) command {
		return func(_ context.Context, args []string) error {
			f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
			return nil
		}
	}
	return map[string]command{
		"login": func(ctx context.Context, args []string) error {
			f.loggedIn = true
			return rec("login")(ctx, args)
		},
		"logout": func(ctx context.Context, args []string) error {
			f.loggedIn = false
			return rec("logout")(ctx, args)
		},
		"get":     rec("get"),
		"sync":    rec("sync"),
		"show":    rec("show"),
		"metrics": rec("metrics"),
	}
}

func silence(t *testing.T) *[]string {
	t.Helper()
	var printed []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i], _ = v.(string)
		}
		printed = append(printed, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &printed
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	printed := silence(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"get",
		"metrics",
		"login alice",
		"help",
		"get 5",
		"",
		"show 2024-06-01",
		"sync",
		"foobar",
		"logout",
		"sync",
		"exit",
		"get",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"metrics", "login alice", "get 5", "show 2024-06-01", "sync", "logout"}, exec.calls)
	assert.Contains(t, *printed, helpLoggedOut)
	assert.Contains(t, *printed, helpLoggedIn)
	assert.Contains(t, *printed, "Please login first")
	assert.Contains(t, *printed, "Unknown command: foobar")
	assert.Contains(t, *printed, "Bye!")
}

func TestRunREPL_EOFStops(t *testing.T) {
	silence(t)
	exec := &fakeExec{loggedIn: true}

	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader("get")))

	assert.Equal(t, []string{"get"}, exec.calls)
}
