package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/letterdesk/internal/client/config"
	"github.com/dmitrijs2005/letterdesk/internal/client/models"
	"github.com/dmitrijs2005/letterdesk/internal/logging"
	"github.com/spf13/cobra"
)

const (
	appName = "letterdesk"
	Version = "0.1.0"
)

// builder constructs the App for one command run.
type builder func(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error)

func defaultBuilder(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	return NewApp(ctx, c, in, out, logging.NewJSONLogger(os.Stderr, c.LogLevel))
}

// Execute runs the CLI. args excludes the program name. Without a
// subcommand the interactive shell starts.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}
	cmd := newRootCmd(cfg, defaultBuilder, in, out)
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(cfg *config.Config, build builder, in io.Reader, out io.Writer) *cobra.Command {
	var configPath string

	// withApp builds the App, runs fn and releases the App.
	withApp := func(fn func(ctx context.Context, a *App, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := build(ctx, cfg, in, out)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := fn(ctx, a, args); err != nil {
				return fmt.Errorf("%s", describe(err))
			}
			return nil
		}
	}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Legal letter desk client",
		Long:          "letterdesk manages legal letter requests on a letterdesk server.\nRun without a command to start the interactive shell.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			a.Root(ctx)
			return nil
		}),
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "JSON config file")
	pf.StringVarP(&cfg.ServerEndpointAddr, "addr", "a", cfg.ServerEndpointAddr, "server address host:port")
	pf.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "local session cache (SQLite)")
	pf.StringVar(&cfg.RestorePolicy, "restore", cfg.RestorePolicy, "session restore policy: verify or trust")
	pf.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	pf.DurationVarP(&cfg.OnlineCheckInterval, "online-interval", "i", cfg.OnlineCheckInterval, "connectivity check interval in the shell")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		signupCmd(withApp),
		loginCmd(withApp),
		&cobra.Command{
			Use:   "logout",
			Short: "Sign out and forget the stored session",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
				return a.logout(ctx)
			}),
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the signed-in user",
			Args:  cobra.NoArgs,
			RunE: withApp(func(_ context.Context, a *App, _ []string) error {
				return a.whoami()
			}),
		},
		passwordCmd(withApp),
		lettersCmd(withApp),
		draftCmd(withApp),
		&cobra.Command{
			Use:   "users",
			Short: "List all accounts (admin)",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
				return a.listUsers(ctx)
			}),
		},
		&cobra.Command{
			Use:   "affiliate",
			Short: "Show your affiliate statistics (employee, admin)",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
				return a.affiliateStats(ctx)
			}),
		},
		&cobra.Command{
			Use:   "templates",
			Short: "List letter templates",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
				return a.listTemplates(ctx)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return root
}

type appRunner func(fn func(ctx context.Context, a *App, args []string) error) func(*cobra.Command, []string) error

func signupCmd(withApp appRunner) *cobra.Command {
	var email, role, code string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			r, err := models.ParseRole(role)
			if err != nil {
				return err
			}
			if email, err = a.ask(email, "Email"); err != nil {
				return err
			}
			pw, err := GetPassword(a.reader, "Password", a.out)
			if err != nil {
				return err
			}
			return a.signup(ctx, email, pw, r, code)
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&role, "role", string(models.RoleUser), "account role: user or employee")
	cmd.Flags().StringVar(&code, "affiliate-code", "", "affiliate code of the referring employee")
	return cmd
}

func loginCmd(withApp appRunner) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			var err error
			if email, err = a.ask(email, "Email"); err != nil {
				return err
			}
			pw, err := GetPassword(a.reader, "Password", a.out)
			if err != nil {
				return err
			}
			return a.login(ctx, email, pw)
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func passwordCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{Use: "password", Short: "Password reset"}

	var email string
	forgot := &cobra.Command{
		Use:   "forgot",
		Short: "Request a password reset token",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			var err error
			if email, err = a.ask(email, "Email"); err != nil {
				return err
			}
			return a.requestReset(ctx, email)
		}),
	}
	forgot.Flags().StringVarP(&email, "email", "e", "", "account email")

	var token string
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password with a reset token",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			var err error
			if token, err = a.ask(token, "Reset token"); err != nil {
				return err
			}
			pw, err := GetPassword(a.reader, "New password", a.out)
			if err != nil {
				return err
			}
			return a.resetPassword(ctx, token, pw)
		}),
	}
	reset.Flags().StringVarP(&token, "token", "t", "", "reset token")

	cmd.AddCommand(forgot, reset)
	return cmd
}

func lettersCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{Use: "letters", Short: "Manage letter requests"}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List your letters, or the review queue with --all",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.listLetters(ctx, all)
		}),
	}
	list.Flags().BoolVar(&all, "all", false, "list every letter (employee, admin)")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one letter",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *App, args []string) error {
			return a.showLetter(ctx, args[0])
		}),
	}

	var (
		in                        models.LetterInput
		due                       string
		fields, recipient, sender []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a letter request",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			var err error
			if in.DueDate, err = parseDue(due); err != nil {
				return err
			}
			if in.TemplateData, err = ParseFields(fields); err != nil {
				return err
			}
			if in.RecipientInfo, err = ParseFields(recipient); err != nil {
				return err
			}
			if in.SenderInfo, err = ParseFields(sender); err != nil {
				return err
			}
			return a.createLetter(ctx, in)
		}),
	}
	cf := create.Flags()
	cf.StringVar(&in.Title, "title", "", "letter title")
	cf.StringVar(&in.LetterType, "type", "other", "letter type or template key")
	cf.StringVar(&in.Description, "description", "", "what the letter is about")
	cf.StringVar(&in.Status, "status", "", "initial status (default draft)")
	cf.StringVar(&in.Priority, "priority", "", "low, medium, high or urgent (default medium)")
	cf.StringVar(&due, "due", "", "due date YYYY-MM-DD")
	cf.StringArrayVar(&fields, "field", nil, "template field name=value (repeatable)")
	cf.StringArrayVar(&recipient, "recipient", nil, "recipient detail name=value (repeatable)")
	cf.StringArrayVar(&sender, "sender", nil, "sender detail name=value (repeatable)")

	var (
		ch        letterChanges
		updDue    string
		updFields []string
	)
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a letter; unset flags keep the stored values",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *App, args []string) error {
			var err error
			if ch.Due, err = parseDue(updDue); err != nil {
				return err
			}
			if ch.Fields, err = ParseFields(updFields); err != nil {
				return err
			}
			return a.updateLetter(ctx, args[0], ch)
		}),
	}
	uf := update.Flags()
	uf.StringVar(&ch.Title, "title", "", "new title")
	uf.StringVar(&ch.Description, "description", "", "new description")
	uf.StringVar(&ch.Status, "status", "", "new status")
	uf.StringVar(&ch.Priority, "priority", "", "new priority")
	uf.StringVar(&updDue, "due", "", "new due date YYYY-MM-DD")
	uf.StringVar(&ch.Final, "final", "", "final letter text")
	uf.StringArrayVar(&updFields, "field", nil, "template field name=value (repeatable)")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a letter",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *App, args []string) error {
			return a.deleteLetter(ctx, args[0])
		}),
	}

	var dir string
	export := &cobra.Command{
		Use:   "export <id>",
		Short: "Write the letter text to a file",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *App, args []string) error {
			return a.exportLetter(ctx, args[0], dir)
		}),
	}
	export.Flags().StringVar(&dir, "dir", "exports", "directory under the working directory")

	cmd.AddCommand(list, show, create, update, del, export)
	return cmd
}

func draftCmd(withApp appRunner) *cobra.Command {
	var (
		r      models.DraftRequest
		fields []string
		saveTo string
	)
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Generate a letter body from a template",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			var err error
			if r.TemplateFields, err = ParseFields(fields); err != nil {
				return err
			}
			return a.draft(ctx, r, saveTo)
		}),
	}
	f := cmd.Flags()
	f.StringVar(&r.Title, "title", "", "letter subject")
	f.StringVar(&r.TemplateKey, "template", "", "template key (see 'templates')")
	f.StringVar(&r.TemplateBody, "body", "", "custom template body, used without --template")
	f.StringArrayVar(&fields, "field", nil, "placeholder value name=value (repeatable)")
	f.StringVar(&r.AdditionalContext, "context", "", "additional context for the letter")
	f.StringVar(&r.Tone, "tone", "", "Formal, Aggressive, Conciliatory or Neutral")
	f.StringVar(&r.Length, "length", "", "Short, Medium or Long")
	f.StringVar(&saveTo, "save", "", "store the draft on this letter id")
	return cmd
}

// ask returns v, or prompts for it when empty.
func (a *App) ask(v, prompt string) (string, error) {
	if v != "" {
		return v, nil
	}
	return GetSimpleText(a.reader, prompt, a.out)
}
