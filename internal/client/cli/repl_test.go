package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context, userName string) error {
	f.calls = append(f.calls, "login "+userName)
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) Printers(ctx context.Context) error {
	f.calls = append(f.calls, "printers")
	return nil
}
func (f *fakeExec) Firmware(ctx context.Context) error {
	f.calls = append(f.calls, "firmware")
	return nil
}
func (f *fakeExec) Deploy(ctx context.Context, id string) error {
	f.calls = append(f.calls, "deploy "+id)
	return nil
}
func (f *fakeExec) Cancel(ctx context.Context, id string) error {
	f.calls = append(f.calls, "cancel "+id)
	return nil
}
func (f *fakeExec) Stats(ctx context.Context) error { f.calls = append(f.calls, "stats"); return nil }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func run(exec *fakeExec, lines ...string) {
	sc := bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n")))
	runREPL(context.Background(), exec, func() string { return "status" }, sc)
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{}
	run(exec,
		"help",
		"printers",
		"login",
		"login admin",
		"",
		"help",
		"p",
		"fw",
		"deploy fw-1",
		"deploy",
		"cancel fw-1",
		"stats",
		"foobar",
		"logout",
		"exit",
		"stats",
	)

	assert.Equal(t, []string{
		"login admin", "printers", "firmware", "deploy fw-1", "cancel fw-1", "stats", "logout",
	}, exec.calls)

	assert.Contains(t, *out, "Available commands: login <username>, exit")
	assert.Contains(t, *out, "Please log in first")
	assert.Contains(t, *out, "Usage: login <username>")
	assert.Contains(t, *out, "Usage: deploy <id>")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
	assert.Contains(t, *out, "fleet status > ")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{loggedIn: true}
	run(exec, "stats")

	assert.Equal(t, []string{"stats"}, exec.calls)
}
