package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/larkwiot/shelfscan/internal"
	"github.com/larkwiot/shelfscan/internal/actions"
	"github.com/larkwiot/shelfscan/internal/config"
	"github.com/larkwiot/shelfscan/internal/notify"
	"github.com/larkwiot/shelfscan/internal/util"
)

const scannerAction = "library_barcode_scanner"
const statusAction = "library_backend_status"

type options struct {
	ConfigPath  string `short:"c" long:"config" description:"filepath to configuration file" default:"./shelfscan.toml"`
	Member      string `short:"m" long:"member" description:"member barcode for a single scan"`
	Book        string `short:"b" long:"book" description:"book barcode for a single scan"`
	Batch       string `long:"batch" description:"CSV file with member_barcode,book_barcode rows to submit"`
	Journal     string `long:"journal" description:"filepath to write a JSON journal of scans to (overrides journal.path)"`
	Action      string `long:"action" description:"action to run" default:"library_barcode_scanner"`
	ListActions bool   `long:"list-actions" description:"list registered actions"`
	NoColor     bool   `long:"no-color" description:"disable colored notifications"`
	Version     bool   `long:"version" description:"print version"`
}

func main() {
	log.SetFlags(0)

	var opts options
	_, err := flags.Parse(&opts)
	if err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if opts.Version {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			log.Fatal("error: unable to get build info")
		}
		log.Println(info)
		os.Exit(0)
	}

	registry := actions.NewRegistry()

	if opts.ListActions {
		register(registry, nil, &opts)
		for _, name := range registry.Names() {
			fmt.Println(name)
		}
		return
	}

	if (len(opts.Member) == 0) != (len(opts.Book) == 0) {
		log.Fatal("error: --member and --book must be given together")
	}

	conf, err := config.NewConfig(util.ExpandUser(opts.ConfigPath))
	if err != nil {
		log.Fatal(err)
	}
	if opts.NoColor {
		conf.Notify.Color = false
	}
	if len(opts.Journal) != 0 {
		conf.Journal.Path = opts.Journal
	}

	journal, err := openJournal(conf.Journal.Path)
	if err != nil {
		log.Fatal(err)
	}

	notifier := notify.NewTerminal(os.Stdout, conf.Notify.Color, conf.Notify.Bell)

	// a nil *JsonStreamWriter must not become a non-nil ObjectWriter
	var sm *internal.ScanManager
	if journal != nil {
		sm, err = internal.NewScanManager(conf, notifier, journal)
	} else {
		sm, err = internal.NewScanManager(conf, notifier, nil)
	}
	if err != nil {
		log.Fatal(err)
	}

	register(registry, sm, &opts)

	action, err := registry.Get(opts.Action)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = action(ctx)
	stop()

	sm.Shutdown()
	if journal != nil {
		journal.Close()
	}

	if err != nil {
		log.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
}

func openJournal(path string) (*util.JsonStreamWriter[*internal.JournalEntry], error) {
	if len(path) == 0 {
		return nil, nil
	}

	output, err := filepath.Abs(util.ExpandUser(path))
	if err != nil {
		return nil, fmt.Errorf("error: could not get absolute journal path: %w", err)
	}
	if exists, _ := util.PathExists(output); exists {
		return nil, fmt.Errorf("error: journal filepath %s already exists, refusing to overwrite", output)
	}

	return util.NewJsonStreamWriter[*internal.JournalEntry](output, util.JsonItem(internal.JournalKey))
}

var errNotReady = errors.New("scan manager is not configured")

func register(registry *actions.Registry, sm *internal.ScanManager, opts *options) {
	mustAdd := func(name string, action actions.Action) {
		if err := registry.Add(name, action); err != nil {
			log.Fatal(err)
		}
	}

	mustAdd(scannerAction, func(ctx context.Context) error {
		if sm == nil {
			return errNotReady
		}

		switch {
		case len(opts.Batch) != 0:
			summary, err := sm.Batch(ctx, opts.Batch)
			if err != nil {
				return err
			}
			log.Printf("scan manager: %d scans, %d succeeded, %d failed, %d skipped\n", summary.Total, summary.Succeeded, summary.Failed, summary.Skipped)
			if summary.Failed != 0 || summary.Skipped != 0 {
				return fmt.Errorf("%d scans failed, %d not submitted", summary.Failed, summary.Skipped)
			}
			return nil
		case len(opts.Member) != 0:
			outcome := sm.ScanOnce(ctx, opts.Member, opts.Book)
			if !outcome.Succeeded() {
				return fmt.Errorf("scan was not successful")
			}
			return nil
		default:
			return sm.Interactive(ctx, os.Stdin)
		}
	})

	mustAdd(statusAction, func(ctx context.Context) error {
		if sm == nil {
			return errNotReady
		}

		version, err := sm.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("backend is up, server version %s\n", version)
		return nil
	})
}
