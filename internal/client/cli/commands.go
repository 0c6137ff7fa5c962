package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/client/models"
	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/filex"
)

const dateLayout = "2006-01-02"

func (a *App) signup(ctx context.Context, email, password string, role models.Role, affiliateCode string) error {
	u, err := a.sessions.Signup(ctx, email, password, role, affiliateCode)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account created. Signed in as %s (%s)\n", u.Email, u.Role)
	return nil
}

func (a *App) login(ctx context.Context, email, password string) error {
	u, err := a.sessions.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", u.Email, u.Role)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) whoami() error {
	u, ok := a.sessions.Current()
	if !ok {
		return common.ErrNotAuthenticated
	}
	fmt.Fprintf(a.out, "%s\t%s\t%s\n", u.Email, u.Role, u.ID)
	if u.AffiliateCode != "" {
		fmt.Fprintf(a.out, "affiliate code: %s\n", u.AffiliateCode)
	}
	return nil
}

func (a *App) requestReset(ctx context.Context, email string) error {
	if err := a.sessions.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "If an account exists for %s, reset instructions have been sent.\n", email)
	return nil
}

func (a *App) resetPassword(ctx context.Context, token, password string) error {
	if err := a.sessions.ResetPassword(ctx, token, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated. You can now log in.")
	return nil
}

func (a *App) listLetters(ctx context.Context, all bool) error {
	var (
		letters []models.Letter
		err     error
	)
	if all {
		letters, err = a.letters.FetchAllLetters(ctx)
	} else {
		letters, err = a.letters.FetchLetters(ctx)
	}
	if err != nil {
		return err
	}
	if len(letters) == 0 {
		fmt.Fprintln(a.out, "No letters")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tSTATUS\tPRIORITY\tDUE\tUPDATED")
	for _, l := range letters {
		due := "-"
		if l.DueDate != nil {
			due = l.DueDate.Format(dateLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Title, l.LetterType, l.Status, l.Priority, due, l.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func (a *App) showLetter(ctx context.Context, id string) error {
	l, err := a.findLetter(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\n%s\n", l.Title, strings.Repeat("=", len(l.Title)))
	fmt.Fprintf(a.out, "id: %s\ntype: %s\nstatus: %s\npriority: %s\n", l.ID, l.LetterType, l.Status, l.Priority)
	if l.DueDate != nil {
		fmt.Fprintf(a.out, "due: %s\n", l.DueDate.Format(dateLayout))
	}
	if l.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", l.Description)
	}
	printMap(a, "recipient", l.RecipientInfo)
	printMap(a, "sender", l.SenderInfo)
	printMap(a, "details", l.TemplateData)
	if l.AIGeneratedContent != nil {
		fmt.Fprintf(a.out, "\n--- draft ---\n%s\n", *l.AIGeneratedContent)
	}
	if l.FinalContent != nil {
		fmt.Fprintf(a.out, "\n--- final ---\n%s\n", *l.FinalContent)
	}
	return nil
}

func printMap(a *App, title string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(a.out, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(a.out, "  %s: %s\n", k, m[k])
	}
}

func (a *App) createLetter(ctx context.Context, in models.LetterInput) error {
	l, err := a.letters.CreateLetter(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created letter %s (%s)\n", l.ID, l.Status)
	return nil
}

// letterChanges holds the edits of an update; empty fields are left alone.
type letterChanges struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Due         *time.Time
	Final       string
	Fields      map[string]string
}

// updateLetter reads the stored letter first because the server replaces
// every field it is sent.
func (a *App) updateLetter(ctx context.Context, id string, ch letterChanges) error {
	l, err := a.findLetter(ctx, id)
	if err != nil {
		return err
	}

	if ch.Title != "" {
		l.Title = ch.Title
	}
	if ch.Description != "" {
		l.Description = ch.Description
	}
	if ch.Status != "" {
		l.Status = ch.Status
	}
	if ch.Priority != "" {
		l.Priority = ch.Priority
	}
	if ch.Due != nil {
		l.DueDate = ch.Due
	}
	if ch.Final != "" {
		final := ch.Final
		l.FinalContent = &final
	}
	if len(ch.Fields) > 0 {
		merged := make(map[string]string, len(l.TemplateData)+len(ch.Fields))
		for k, v := range l.TemplateData {
			merged[k] = v
		}
		for k, v := range ch.Fields {
			merged[k] = v
		}
		l.TemplateData = merged
	}

	updated, err := a.letters.UpdateLetter(ctx, l)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated letter %s (%s)\n", updated.ID, updated.Status)
	return nil
}

func (a *App) deleteLetter(ctx context.Context, id string) error {
	if err := a.letters.DeleteLetter(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted letter %s\n", id)
	return nil
}

func (a *App) listUsers(ctx context.Context) error {
	users, err := a.letters.FetchAllUsers(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tAFFILIATE\tCREATED")
	for _, u := range users {
		code := u.AffiliateCode
		if code == "" {
			code = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, code, u.CreatedAt.Local().Format(dateLayout))
	}
	return tw.Flush()
}

// draft generates a letter body. With saveTo set the text is stored as the
// draft of that letter.
func (a *App) draft(ctx context.Context, r models.DraftRequest, saveTo string) error {
	text, err := a.letters.GenerateDraft(ctx, r)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, text)

	if saveTo == "" {
		return nil
	}
	l, err := a.findLetter(ctx, saveTo)
	if err != nil {
		return err
	}
	l.AIGeneratedContent = &text
	if _, err := a.letters.UpdateLetter(ctx, l); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	fmt.Fprintf(a.out, "Draft saved to letter %s\n", l.ID)
	return nil
}

func (a *App) affiliateStats(ctx context.Context) error {
	s, err := a.letters.AffiliateStats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "code: %s\nsignups: %d\nearnings: $%.2f\npoints: %d\n",
		s.Code, s.TotalSignups, s.TotalEarnings, s.TotalPoints)
	return nil
}

func (a *App) listTemplates(ctx context.Context) error {
	tpls, err := a.remote.ListTemplates(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tFIELDS")
	for _, t := range tpls {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Key, t.Label, strings.Join(t.RequiredFields, ", "))
	}
	return tw.Flush()
}

// exportLetter writes the final text of a letter, or its draft when no final
// text exists, to <dir>/<id>.txt under the working directory.
func (a *App) exportLetter(ctx context.Context, id, dir string) error {
	l, err := a.findLetter(ctx, id)
	if err != nil {
		return err
	}
	var content string
	switch {
	case l.FinalContent != nil && *l.FinalContent != "":
		content = *l.FinalContent
	case l.AIGeneratedContent != nil && *l.AIGeneratedContent != "":
		content = *l.AIGeneratedContent
	default:
		return fmt.Errorf("%w: letter %s has no content yet", common.ErrValidation, id)
	}

	path, err := filex.WriteInSubDir(dir, l.ID+".txt", []byte(content))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported to %s\n", path)
	return nil
}

// findLetter looks the letter up among the caller's own letters, then in
// the review queue when the role allows it.
func (a *App) findLetter(ctx context.Context, id string) (models.Letter, error) {
	if id == "" {
		return models.Letter{}, fmt.Errorf("%w: letter id is required", common.ErrValidation)
	}
	own, err := a.letters.FetchLetters(ctx)
	if err != nil {
		return models.Letter{}, err
	}
	if l, ok := pick(own, id); ok {
		return l, nil
	}

	if u, _ := a.sessions.Current(); u.Role.CanViewAllLetters() {
		all, err := a.letters.FetchAllLetters(ctx)
		if err != nil {
			return models.Letter{}, err
		}
		if l, ok := pick(all, id); ok {
			return l, nil
		}
	}
	return models.Letter{}, fmt.Errorf("letter %s: %w", id, common.ErrorNotFound)
}

func pick(ls []models.Letter, id string) (models.Letter, bool) {
	for _, l := range ls {
		if l.ID == id {
			return l, true
		}
	}
	return models.Letter{}, false
}

func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: due date must be YYYY-MM-DD", common.ErrValidation)
	}
	return &t, nil
}

// describe turns an error into a one-line message for the terminal.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrNotAuthenticated):
		return "not signed in: use 'login' first"
	case common.IsRemoteKind(err, common.RemoteUnavailable):
		return "server unavailable, try again later"
	case errors.Is(err, common.ErrPermissionDenied):
		return "permission denied for your role"
	}
	return err.Error()
}
