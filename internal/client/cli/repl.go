package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/client/models"
)

// execIface defines the command surface the shell dispatches to. The real
// App satisfies it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context, args []string) error
	Forgot(ctx context.Context, args []string) error
	Reset(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Create(ctx context.Context, args []string) error
	Update(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Draft(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Users(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
	Templates(ctx context.Context, args []string) error
}

const (
	helpGuest  = "Available commands: signup, login, forgot, reset, templates, exit"
	helpMember = "Available commands: (l)ist [all], show <id>, create, update <id>, delete <id>, draft, export <id>, users, stats, templates, whoami, logout, exit"
)

// Root runs the interactive shell until the user exits or input ends.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to letterdesk (type 'help' for commands)")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interval := 3 * time.Second
	if a.config != nil && a.config.OnlineCheckInterval > 0 {
		interval = a.config.OnlineCheckInterval
	}
	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, interval)

	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not signed in. Use 'login' or 'signup'.")
	}
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

// runREPL reads a line, parses the first token as the command and
// dispatches it. Handler errors are printed and the loop continues. The
// loop exits on EOF or "exit"/"quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "letterdesk %s> ", statusFn())
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, helpMember)
			} else {
				fmt.Fprintln(out, helpGuest)
			}
		case "signup":
			cmdErr = a.Signup(ctx, args)
		case "login":
			cmdErr = a.Login(ctx, args)
		case "logout":
			cmdErr = a.Logout(ctx, args)
		case "whoami":
			cmdErr = a.WhoAmI(ctx, args)
		case "forgot":
			cmdErr = a.Forgot(ctx, args)
		case "reset":
			cmdErr = a.Reset(ctx, args)
		case "l", "list":
			cmdErr = a.List(ctx, args)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "create":
			cmdErr = a.Create(ctx, args)
		case "update":
			cmdErr = a.Update(ctx, args)
		case "delete":
			cmdErr = a.Delete(ctx, args)
		case "draft":
			cmdErr = a.Draft(ctx, args)
		case "export":
			cmdErr = a.Export(ctx, args)
		case "users":
			cmdErr = a.Users(ctx, args)
		case "stats":
			cmdErr = a.Stats(ctx, args)
		case "templates":
			cmdErr = a.Templates(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
		if cmdErr != nil {
			fmt.Fprintln(out, "error:", describe(cmdErr))
		}
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (a *App) Signup(ctx context.Context, args []string) error {
	email, err := a.ask(firstArg(args), "Email")
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	roleText, err := GetSimpleText(a.reader, "Role (user/employee, empty for user)", a.out)
	if err != nil {
		return err
	}
	role := models.RoleUser
	if roleText != "" {
		if role, err = models.ParseRole(roleText); err != nil {
			return err
		}
	}
	code, err := GetSimpleText(a.reader, "Affiliate code (optional)", a.out)
	if err != nil {
		return err
	}
	return a.signup(ctx, email, pw, role, code)
}

func (a *App) Login(ctx context.Context, args []string) error {
	email, err := a.ask(firstArg(args), "Email")
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	return a.login(ctx, email, pw)
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	return a.logout(ctx)
}

func (a *App) WhoAmI(context.Context, []string) error {
	return a.whoami()
}

func (a *App) Forgot(ctx context.Context, args []string) error {
	email, err := a.ask(firstArg(args), "Email")
	if err != nil {
		return err
	}
	return a.requestReset(ctx, email)
}

func (a *App) Reset(ctx context.Context, args []string) error {
	token, err := a.ask(firstArg(args), "Reset token")
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	return a.resetPassword(ctx, token, pw)
}

func (a *App) List(ctx context.Context, args []string) error {
	return a.listLetters(ctx, firstArg(args) == "all")
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.ask(firstArg(args), "Letter id")
	if err != nil {
		return err
	}
	return a.showLetter(ctx, id)
}

func (a *App) Create(ctx context.Context, _ []string) error {
	var in models.LetterInput
	var err error

	if in.Title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if in.LetterType, err = GetSimpleText(a.reader, "Letter type or template key", a.out); err != nil {
		return err
	}
	if in.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}
	if in.Priority, err = GetSimpleText(a.reader, "Priority (low/medium/high/urgent, empty for medium)", a.out); err != nil {
		return err
	}
	due, err := GetSimpleText(a.reader, "Due date YYYY-MM-DD (optional)", a.out)
	if err != nil {
		return err
	}
	if in.DueDate, err = parseDue(due); err != nil {
		return err
	}
	if in.RecipientInfo, err = GetFields(a.reader, "Recipient details", a.out); err != nil {
		return err
	}
	if in.SenderInfo, err = GetFields(a.reader, "Sender details", a.out); err != nil {
		return err
	}
	if in.TemplateData, err = GetFields(a.reader, "Letter details", a.out); err != nil {
		return err
	}
	return a.createLetter(ctx, in)
}

func (a *App) Update(ctx context.Context, args []string) error {
	id, err := a.ask(firstArg(args), "Letter id")
	if err != nil {
		return err
	}
	var ch letterChanges
	if ch.Status, err = GetSimpleText(a.reader, "New status (empty to keep)", a.out); err != nil {
		return err
	}
	if ch.Priority, err = GetSimpleText(a.reader, "New priority (empty to keep)", a.out); err != nil {
		return err
	}
	if ch.Title, err = GetSimpleText(a.reader, "New title (empty to keep)", a.out); err != nil {
		return err
	}
	if ch.Final, err = GetMultiline(a.reader, "Final text (empty to keep)", a.out); err != nil {
		return err
	}
	return a.updateLetter(ctx, id, ch)
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.ask(firstArg(args), "Letter id")
	if err != nil {
		return err
	}
	return a.deleteLetter(ctx, id)
}

func (a *App) Draft(ctx context.Context, _ []string) error {
	var r models.DraftRequest
	var err error

	if r.Title, err = GetSimpleText(a.reader, "Letter subject", a.out); err != nil {
		return err
	}
	if r.TemplateKey, err = GetSimpleText(a.reader, "Template key (empty for a custom body)", a.out); err != nil {
		return err
	}
	if r.TemplateKey == "" {
		if r.TemplateBody, err = GetMultiline(a.reader, "Template body", a.out); err != nil {
			return err
		}
	}
	if r.TemplateFields, err = GetFields(a.reader, "Placeholder values", a.out); err != nil {
		return err
	}
	if r.AdditionalContext, err = GetMultiline(a.reader, "Additional context (optional)", a.out); err != nil {
		return err
	}
	if r.Tone, err = GetSimpleText(a.reader, "Tone (Formal/Aggressive/Conciliatory/Neutral, optional)", a.out); err != nil {
		return err
	}
	if r.Length, err = GetSimpleText(a.reader, "Length (Short/Medium/Long, optional)", a.out); err != nil {
		return err
	}
	saveTo, err := GetSimpleText(a.reader, "Save to letter id (optional)", a.out)
	if err != nil {
		return err
	}
	return a.draft(ctx, r, saveTo)
}

func (a *App) Export(ctx context.Context, args []string) error {
	id, err := a.ask(firstArg(args), "Letter id")
	if err != nil {
		return err
	}
	return a.exportLetter(ctx, id, "exports")
}

func (a *App) Users(ctx context.Context, _ []string) error {
	return a.listUsers(ctx)
}

func (a *App) Stats(ctx context.Context, _ []string) error {
	return a.affiliateStats(ctx)
}

func (a *App) Templates(ctx context.Context, _ []string) error {
	return a.listTemplates(ctx)
}
