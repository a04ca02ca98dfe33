// switchadmin runs maintenance tasks against the configured switch store.
//
//	switchadmin reset               delete every switch and restart keys at 1
//	switchadmin import --file f     bulk import a .yaml/.yml/.json/.jsonc seed
//
// It reads the same environment as the API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ahmed-Ibrahim-0/switches-controller/app"
	"github.com/Ahmed-Ibrahim-0/switches-controller/config"
	"github.com/Ahmed-Ibrahim-0/switches-controller/seed"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		file   string
		dryRun bool
	)
	flagSet := pflag.NewFlagSet("switchadmin", pflag.ContinueOnError)
	flagSet.StringVarP(&file, "file", "f", "", "seed file for import (.yaml, .yml, .json, .jsonc)")
	flagSet.BoolVar(&dryRun, "dry-run", false, "import: parse the seed file and report the row count only")
	flagSet.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: switchadmin reset | import --file <seed>")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return errors.New("expected exactly one command")
	}
	cmd := flagSet.Arg(0)
	if cmd != "reset" && cmd != "import" {
		return fmt.Errorf("unknown command %q", cmd)
	}

	if cmd == "import" {
		if file == "" {
			return errors.New("import needs --file")
		}
		parsed, err := seed.Load(file)
		if err != nil {
			return err
		}
		if dryRun {
			fmt.Printf("%s: %d rows\n", file, len(parsed))
			return nil
		}
		return withApp(func(ctx context.Context, a *app.App) error {
			res, err := seed.Import(ctx, a.Service, parsed)
			if res != nil {
				for _, r := range res.Rejected {
					a.Log.WithFields(logrus.Fields{"row": r.Row, "serial": r.Serial}).Warn(r.Err.Error())
				}
				a.Log.WithFields(logrus.Fields{
					"file":     file,
					"rows":     len(parsed),
					"imported": len(res.Imported),
					"rejected": len(res.Rejected),
				}).Info("import finished")
			}
			return err
		})
	}

	return withApp(func(ctx context.Context, a *app.App) error {
		n, err := a.Service.Reset(ctx)
		if err != nil {
			return err
		}
		a.Log.WithField("deleted", n).Info("switches cleared, sequence reset")
		return nil
	})
}

func withApp(fn func(context.Context, *app.App) error) error {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := app.NewLogger(cfg.Logging)
	a, err := app.New(cfg, log, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, a)
}
