package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/repository"
	"github.com/fabienng71/Rclx-sub001/services"
)

var cliOrigin = models.LoginOrigin{IPAddress: "127.0.0.1", UserAgent: "quotectl"}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("QUOTECTL_PASSWORD"), "account password")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("%w: login needs -email and a password", errUsage)
	}

	user, err := a.session.Login(ctx, *email, *password, cliOrigin)
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidCredential) {
		return errors.New("invalid email or password")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func (a *app) whoami() error {
	user, ok := a.session.CurrentUser()
	if !ok || !a.session.IsAuthenticated() {
		return errors.New("not signed in")
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s\n", user.Name, user.Email, user.Role)
	return nil
}

// requireUser returns the live account behind the session, so edits made by an
// admin since login (telephone, deletion) are honoured.
func (a *app) requireUser(ctx context.Context) (models.User, error) {
	user, ok := a.session.CurrentUser()
	if !ok || !a.session.IsAuthenticated() {
		return models.User{}, errors.New("not signed in; run quotectl login")
	}
	live, err := a.creds.GetUser(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, errors.New("account no longer exists; run quotectl login")
	}
	return live, err
}

func (a *app) quote(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: quote needs a subcommand", errUsage)
	}
	user, err := a.requireUser(ctx)
	if err != nil {
		return err
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "new":
		return a.quoteNew(ctx, user, rest)
	case "list":
		return a.quoteList(rest)
	case "status":
		if len(rest) != 2 {
			return fmt.Errorf("%w: quote status <id> <status>", errUsage)
		}
		if err := a.quotes.SetStatus(ctx, rest[0], models.QuotationStatus(rest[1])); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Status updated")
		return nil
	case "archive", "restore", "delete":
		if len(rest) != 1 {
			return fmt.Errorf("%w: quote %s <id>", errUsage, sub)
		}
		action := map[string]func(context.Context, string) error{
			"archive": a.quotes.Archive,
			"restore": a.quotes.Restore,
			"delete":  a.quotes.Delete,
		}[sub]
		return action(ctx, rest[0])
	case "pdf":
		return a.quotePDF(ctx, rest)
	}
	return fmt.Errorf("%w: unknown quote subcommand %q", errUsage, sub)
}

func (a *app) quoteNew(ctx context.Context, user models.User, args []string) error {
	fs := newFlagSet("quote new")
	file := fs.String("f", "", "draft request JSON file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *file == "" {
		return fmt.Errorf("%w: quote new needs -f", errUsage)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	var req models.DraftRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("failed to parse %s: %w", *file, err)
	}

	q, err := services.DraftFromRequest(req, user, a.clock)
	if err != nil {
		return err
	}
	if err := a.quotes.Save(ctx, q); err != nil {
		return err
	}
	fmt.Fprintln(a.out, q.ID)
	return nil
}

func (a *app) quoteList(args []string) error {
	fs := newFlagSet("quote list")
	archived := fs.Bool("archived", false, "list the archive")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	list := a.quotes.Active()
	if *archived {
		list = a.quotes.Archived()
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tCUSTOMER\tSTATUS\tTOTAL")
	for _, q := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\n",
			q.ID, q.CreatedAt.Format("2006-01-02 15:04"), q.Customer.CompanyName, q.Status, q.TotalQuote())
	}
	return tw.Flush()
}

func (a *app) quotePDF(ctx context.Context, args []string) error {
	fs := newFlagSet("quote pdf")
	out := fs.String("o", "", "output file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *out == "" || fs.NArg() != 1 {
		return fmt.Errorf("%w: quote pdf -o file <id>", errUsage)
	}

	q, _, err := a.quotes.Get(fs.Arg(0))
	if err != nil {
		return err
	}
	return writeFile(*out, func(w io.Writer) error {
		return a.renderer.Render(ctx, w, services.DocumentFromQuotation(q, a.clock.Now()))
	})
}

func (a *app) export(ctx context.Context, args []string) error {
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}
	fs := newFlagSet("export")
	out := fs.String("o", "", "output file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *out == "" {
		return fmt.Errorf("%w: export needs -o", errUsage)
	}
	return writeFile(*out, func(w io.Writer) error {
		return a.exporter.WriteQuotations(w, a.quotes.Active(), a.quotes.Archived())
	})
}

// writeFile removes a partially written file when fn fails.
func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
