// Command quotectl is the local client: it signs in, keeps the session snapshot
// and drives the quotation lifecycle against the configured storage.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fabienng71/Rclx-sub001/config"
	"github.com/fabienng71/Rclx-sub001/repository"
	"github.com/fabienng71/Rclx-sub001/services"
	"github.com/fabienng71/Rclx-sub001/storage"
	"github.com/fabienng71/Rclx-sub001/utils"
)

const usage = `usage: quotectl <command> [flags]

commands:
  login -email E [-password P]   sign in (password falls back to QUOTECTL_PASSWORD)
  logout                         clear the local session
  whoami                         print the signed-in user
  quote new -f draft.json        assemble and save a quotation
  quote list [-archived]         list quotations, newest first
  quote status <id> <status>     set draft, sent, accepted or rejected
  quote archive <id>
  quote restore <id>
  quote delete <id>
  quote pdf -o file.pdf <id>     render a saved quotation
  export -o register.xlsx        write the quotation register
`

var errUsage = errors.New("invalid usage")

func main() {
	log.SetFlags(0)
	log.SetPrefix("quotectl: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	kv, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open %s storage: %v", cfg.StorageDriver, err)
	}

	a, err := newApp(ctx, cfg, kv, os.Stdout, utils.SystemClock{})
	if err == nil {
		err = a.run(ctx, os.Args[1:])
	}
	if cerr := storage.Close(kv); cerr != nil {
		log.Printf("storage close: %v", cerr)
	}
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

type app struct {
	out      io.Writer
	clock    utils.Clock
	creds    *repository.CredentialStore
	session  *repository.SessionStore
	quotes   *repository.QuotationStore
	renderer *services.QuotationRenderer
	exporter *services.RegisterExporter
}

func newApp(ctx context.Context, cfg config.Config, kv storage.Storage, out io.Writer, clock utils.Clock) (*app, error) {
	creds, err := repository.NewCredentialStore(kv, utils.NewTokenIssuer(cfg.JWTSecret, clock), clock, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	return newAppWithCredentials(ctx, cfg, kv, out, clock, creds)
}

func newAppWithCredentials(ctx context.Context, cfg config.Config, kv storage.Storage, out io.Writer, clock utils.Clock, creds *repository.CredentialStore) (*app, error) {
	session, err := repository.NewSessionStore(ctx, kv, creds)
	if err != nil {
		return nil, err
	}
	quotes, err := repository.NewQuotationStore(ctx, kv)
	if err != nil {
		return nil, err
	}
	return &app{
		out:     out,
		clock:   clock,
		creds:   creds,
		session: session,
		quotes:  quotes,
		renderer: services.NewQuotationRenderer(services.Issuer{
			Name:    cfg.CompanyName,
			Address: cfg.CompanyAddress,
			Phone:   cfg.CompanyPhone,
			Email:   cfg.CompanyEmail,
		}),
		exporter: services.NewRegisterExporter(),
	}, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "login":
		return a.login(ctx, args[1:])
	case "logout":
		if err := a.session.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Signed out")
		return nil
	case "whoami":
		return a.whoami()
	case "quote":
		return a.quote(ctx, args[1:])
	case "export":
		return a.export(ctx, args[1:])
	case "help", "-h", "--help":
		return flag.ErrHelp
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}
