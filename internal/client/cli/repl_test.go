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

	calls []string
	paths []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) WhoAmI(ctx context.Context) error {
	f.calls = append(f.calls, "whoami")
	return nil
}
func (f *fakeExec) Status(ctx context.Context) error {
	f.calls = append(f.calls, "status")
	return nil
}
func (f *fakeExec) Get(ctx context.Context, path string) error {
	f.calls = append(f.calls, "get")
	f.paths = append(f.paths, path)
	return nil
}
func (f *fakeExec) Post(ctx context.Context, path string) error {
	f.calls = append(f.calls, "post")
	f.paths = append(f.paths, path)
	return nil
}

func silence(t *testing.T) *[]string {
	t.Helper()
	var printed []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		printed = append(printed, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &printed
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	silence(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"whoami",
		"status",
		"get /api/products",
		"post api/sales",
		"foobar",
		"logout",
		"exit",
		"status",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"login", "whoami", "status", "get", "post", "logout"}, exec.calls)
	assert.Equal(t, []string{"/api/products", "api/sales"}, exec.paths)
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	printed := silence(t)

	input := strings.NewReader("get\npost\n\nquit\nlogin\n")
	exec := &fakeExec{loggedIn: true}

	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *printed, "Usage: get <path>")
	assert.Contains(t, *printed, "Usage: post <path>")
	assert.Contains(t, *printed, "Bye!")
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	printed := silence(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "" }, bufio.NewScanner(strings.NewReader("help\n")))
	assert.Contains(t, *printed, "Available commands: login, status, exit")

	*printed = nil
	runREPL(context.Background(), &fakeExec{loggedIn: true}, func() string { return "" }, bufio.NewScanner(strings.NewReader("help\n")))
	assert.Contains(t, *printed, "Available commands: whoami, status, get <path>, post <path>, logout, exit")
}

func TestRunREPL_EOFEndsLoop(t *testing.T) {
	silence(t)
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("")))
	assert.Empty(t, exec.calls)
}
