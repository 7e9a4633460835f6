// Command rutld-connector is invoked by the billing host for every domain
// lifecycle event of the ru-tld processing module.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/and161185/rutld-connector/internal/config"
	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/metrics"
	"github.com/and161185/rutld-connector/internal/migrate"
	"github.com/and161185/rutld-connector/internal/model"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// Exit codes reported to the billing host.
const (
	exitOK            = 0
	exitFailure       = 1
	exitUsage         = 2
	exitNotFound      = 3
	exitInvalid       = 4
	exitConflict      = 5
	exitUnimplemented = 6
)

func usage(w io.Writer) {
	fmt.Fprintf(w, `rutld-connector %s
Usage:
  rutld-connector <cmd> [args]

Commands:
  open|prolong|sync|updatens|suspend|resume|close|transfer  -item <id>
  import        -account <id> [-itemtype domain] [-search "a.ru b.com"]
  check         -url <url> -user <name> -password <secret> [-registrar <id>]
  contacttypes  -tld <name>
  registrars
  migrate
  version
`, version)
}

// command is a parsed invocation.
type command struct {
	name      string
	itemID    int64
	accountID int64
	itemType  string
	search    string
	tld       string
	account   model.Account
}

var itemCommands = map[string]bool{
	"open": true, "prolong": true, "sync": true, "updatens": true,
	"suspend": true, "resume": true, "close": true, "transfer": true,
}

// parseArgs validates the command line; defaultURL fills check's -url.
func parseArgs(args []string, defaultURL string) (command, error) {
	if len(args) < 1 {
		return command{}, errors.New("missing command")
	}
	c := command{name: args[0]}
	fs := flag.NewFlagSet(c.name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	switch {
	case itemCommands[c.name]:
		fs.Int64Var(&c.itemID, "item", 0, "item id")
		if err := fs.Parse(args[1:]); err != nil {
			return command{}, err
		}
		if c.itemID <= 0 {
			return command{}, errors.New("need -item")
		}
	case c.name == "import":
		fs.Int64Var(&c.accountID, "account", 0, "processing module id")
		fs.StringVar(&c.itemType, "itemtype", "domain", "item type")
		fs.StringVar(&c.search, "search", "", "space separated domain names")
		if err := fs.Parse(args[1:]); err != nil {
			return command{}, err
		}
		if c.accountID <= 0 {
			return command{}, errors.New("need -account")
		}
	case c.name == "check":
		fs.StringVar(&c.account.URL, "url", defaultURL, "remote url")
		fs.StringVar(&c.account.Username, "user", "", "remote user")
		fs.StringVar(&c.account.Password, "password", "", "remote password")
		fs.IntVar(&c.account.Registrar, "registrar", model.AnyRegistrar, "pinned registrar")
		if err := fs.Parse(args[1:]); err != nil {
			return command{}, err
		}
		if c.account.Username == "" || c.account.Password == "" {
			return command{}, errors.New("need -user and -password")
		}
	case c.name == "contacttypes":
		fs.StringVar(&c.tld, "tld", "", "tld name")
		if err := fs.Parse(args[1:]); err != nil {
			return command{}, err
		}
		if c.tld == "" {
			return command{}, errors.New("need -tld")
		}
	case c.name == "registrars", c.name == "migrate", c.name == "version":
	default:
		return command{}, fmt.Errorf("unknown command %q", c.name)
	}
	return c, nil
}

// exitCode maps an operation error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errs.ErrUnimplemented):
		return exitUnimplemented
	case errors.Is(err, errs.ErrInvalidPeriod),
		errors.Is(err, errs.ErrInvalidValue),
		errors.Is(err, errs.ErrMissing):
		return exitInvalid
	case errors.Is(err, errs.ErrNotFound):
		return exitNotFound
	case errors.Is(err, errs.ErrConflict):
		return exitConflict
	default:
		return exitFailure
	}
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	cmd, err := parseArgs(args, cfg.RemoteURL)
	if err != nil {
		fmt.Fprintln(stderr, err)
		usage(stderr)
		return exitUsage
	}
	if cmd.name == "version" {
		fmt.Fprintf(stdout, "rutld-connector %s (%s)\n", version, buildDate)
		return exitOK
	}

	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cmd.name == "migrate" {
		if err := migrate.Up(ctx, cfg.ContactDSN, logger); err != nil {
			logger.Error("migrate up", zap.Error(err))
			return exitFailure
		}
		return exitOK
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup", zap.Error(err))
		return exitCode(err)
	}
	defer a.close()

	err = a.execute(ctx, cmd, stdout)
	if cfg.MetricsTextfile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsTextfile, a.registry); werr != nil {
			logger.Warn("write metrics", zap.Error(werr))
		}
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
	}
	return exitCode(err)
}
