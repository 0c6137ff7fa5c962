package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	failWith error

	calls []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) rec(name string, args []string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return f.failWith
}

func (f *fakeExec) Signup(_ context.Context, a []string) error { return f.rec("signup", a) }
func (f *fakeExec) Login(_ context.Context, a []string) error {
	f.loggedIn = true
	return f.rec("login", a)
}
func (f *fakeExec) Logout(_ context.Context, a []string) error {
	f.loggedIn = false
	return f.rec("logout", a)
}
func (f *fakeExec) WhoAmI(_ context.Context, a []string) error    { return f.rec("whoami", a) }
func (f *fakeExec) Forgot(_ context.Context, a []string) error    { return f.rec("forgot", a) }
func (f *fakeExec) Reset(_ context.Context, a []string) error     { return f.rec("reset", a) }
func (f *fakeExec) List(_ context.Context, a []string) error      { return f.rec("list", a) }
func (f *fakeExec) Show(_ context.Context, a []string) error      { return f.rec("show", a) }
func (f *fakeExec) Create(_ context.Context, a []string) error    { return f.rec("create", a) }
func (f *fakeExec) Update(_ context.Context, a []string) error    { return f.rec("update", a) }
func (f *fakeExec) Delete(_ context.Context, a []string) error    { return f.rec("delete", a) }
func (f *fakeExec) Draft(_ context.Context, a []string) error     { return f.rec("draft", a) }
func (f *fakeExec) Export(_ context.Context, a []string) error    { return f.rec("export", a) }
func (f *fakeExec) Users(_ context.Context, a []string) error     { return f.rec("users", a) }
func (f *fakeExec) Stats(_ context.Context, a []string) error     { return f.rec("stats", a) }
func (f *fakeExec) Templates(_ context.Context, a []string) error { return f.rec("templates", a) }

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"login alice@example.com",
		"help",
		"",
		"l all",
		"show l1",
		"create",
		"update l1",
		"delete l1",
		"draft",
		"export l1",
		"users",
		"stats",
		"templates",
		"whoami",
		"foobar",
		"logout",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "(status)" }, bufio.NewReader(strings.NewReader(input)), &out)

	assert.Equal(t, []string{
		"login alice@example.com",
		"list all",
		"show l1",
		"create",
		"update l1",
		"delete l1",
		"draft",
		"export l1",
		"users",
		"stats",
		"templates",
		"whoami",
		"logout",
	}, exec.calls, "nothing runs after exit")

	text := out.String()
	assert.Contains(t, text, helpGuest)
	assert.Contains(t, text, helpMember)
	assert.Contains(t, text, "Unknown command: foobar")
	assert.Contains(t, text, "letterdesk (status)> ")
	assert.Contains(t, text, "Bye!")
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	exec := &fakeExec{failWith: common.ErrNotAuthenticated}
	var out bytes.Buffer

	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("list\nstats\n")), &out)

	assert.Equal(t, []string{"list", "stats"}, exec.calls)
	assert.Equal(t, 2, strings.Count(out.String(), "error: not signed in"))
}

func TestRunREPL_EOFWithoutNewline(t *testing.T) {
	exec := &fakeExec{}
	var out bytes.Buffer

	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("forgot a@example.com")), &out)

	assert.Equal(t, []string{"forgot a@example.com"}, exec.calls)
}
