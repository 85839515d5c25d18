package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/larkwiot/shelfscan/internal/barcode"
	"github.com/larkwiot/shelfscan/internal/config"
	"github.com/larkwiot/shelfscan/internal/notify"
	"github.com/larkwiot/shelfscan/internal/rpc"
	"github.com/larkwiot/shelfscan/internal/scan"
	"github.com/larkwiot/shelfscan/internal/service"
	"github.com/larkwiot/shelfscan/internal/util"
	"github.com/larkwiot/shelfscan/internal/wedge"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
)

type JournalEntry struct {
	Id       string       `json:"id"`
	Time     time.Time    `json:"time"`
	Member   string       `json:"member_barcode"`
	Book     string       `json:"book_barcode"`
	BookKind barcode.Kind `json:"book_kind"`
	Outcome  scan.Kind    `json:"outcome"`
	Severity notify.Type  `json:"severity"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
}

func JournalKey(entry *JournalEntry) string {
	return entry.Id
}

type BatchRow struct {
	Member string `csv:"member_barcode"`
	Book   string `csv:"book_barcode"`
}

type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

type ScanManager struct {
	client       *rpc.Client
	submitter    *scan.Submitter
	services     *service.ServiceManager
	journal      util.ObjectWriter[*JournalEntry]
	reader       *wedge.Reader
	memberPrefix string
	progressOut  io.Writer
}

// NewScanManager wires the backend client, submitter and health watcher. journal may be nil.
func NewScanManager(conf *config.Config, notifier notify.Notifier, journal util.ObjectWriter[*JournalEntry]) (*ScanManager, error) {
	err := conf.Validate()
	if err != nil {
		return nil, err
	}

	client, err := rpc.NewClient(&conf.Backend)
	if err != nil {
		return nil, fmt.Errorf("could not create backend client: %w", err)
	}

	services := service.NewServiceManager(time.Duration(conf.Advanced.HealthCheckIntervalSeconds) * time.Second)
	services.Manage(client)

	return &ScanManager{
		client:       client,
		submitter:    scan.NewSubmitter(client, notifier),
		services:     services,
		journal:      journal,
		reader:       wedge.NewReader(&conf.Scanner),
		memberPrefix: conf.Scanner.MemberPrefix,
		progressOut:  os.Stderr,
	}, nil
}

func (sm *ScanManager) SetProgressOutput(w io.Writer) {
	sm.progressOut = w
}

func (sm *ScanManager) Shutdown() {
	sm.services.Close()
}

func (sm *ScanManager) record(member string, book string, outcome scan.Outcome) {
	if sm.journal == nil {
		return
	}

	sm.journal.WriteObject(&JournalEntry{
		Id:       uuid.NewString(),
		Time:     time.Now().UTC(),
		Member:   member,
		Book:     book,
		BookKind: barcode.Classify(book),
		Outcome:  outcome.Kind,
		Severity: outcome.Notification.Type,
		Title:    outcome.Notification.Title,
		Message:  outcome.Notification.Text,
	})
}

// ScanOnce submits a single member/book pair.
func (sm *ScanManager) ScanOnce(ctx context.Context, member string, book string) scan.Outcome {
	if !sm.services.IsLive(sm.client.Name()) {
		log.Printf("warning: %s failed its last health check, submitting anyway\n", sm.client.Name())
	}

	outcome := sm.submitter.Submit(ctx, member, book)
	sm.record(member, book, outcome)
	return outcome
}

// Interactive reads wedge scans from input and submits each completed pair, one at a
// time, until input ends or ctx is cancelled.
func (sm *ScanManager) Interactive(ctx context.Context, input io.Reader) error {
	scans, errs := sm.reader.Scans(ctx, input)
	router := wedge.NewRouter(sm.memberPrefix)

	if len(sm.memberPrefix) != 0 {
		log.Printf("scan manager: ready, scan a member card (%s...) then books\n", sm.memberPrefix)
	} else {
		log.Println("scan manager: ready, scan a member card then a book")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case code, isOpen := <-scans:
			if !isOpen {
				return <-errs
			}

			pair := router.Route(code)
			if pair.IsAbsent() {
				if state := router.State(); state.MemberIdentifier == code {
					log.Printf("info: member %s selected\n", code)
				}
				continue
			}

			p := pair.MustGet()
			sm.ScanOnce(ctx, p.Member, p.Item)
			router.Done()
		}
	}
}

// Batch submits every row of a CSV file with member_barcode and book_barcode columns,
// sequentially. Rows left over when ctx is cancelled are counted as skipped.
func (sm *ScanManager) Batch(ctx context.Context, path string) (BatchSummary, error) {
	fh, err := os.Open(path)
	if err != nil {
		return BatchSummary{}, err
	}
	defer fh.Close()

	rows := make([]*BatchRow, 0)
	err = gocsv.Unmarshal(fh, &rows)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("could not parse batch file %s: %w", path, err)
	}

	pb := progressbar.NewOptions(
		len(rows),
		progressbar.OptionSetWriter(sm.progressOut),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetDescription("submitting scans"),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	defer pb.Close()

	outcomes := make([]scan.Outcome, 0, len(rows))
	for _, row := range rows {
		if ctx.Err() != nil {
			log.Printf("warning: batch interrupted after %d of %d scans\n", len(outcomes), len(rows))
			break
		}
		outcomes = append(outcomes, sm.ScanOnce(ctx, row.Member, row.Book))
		pb.Add(1)
	}

	succeeded := lo.CountBy(outcomes, func(o scan.Outcome) bool {
		return o.Succeeded()
	})

	return BatchSummary{
		Total:     len(rows),
		Succeeded: succeeded,
		Failed:    len(outcomes) - succeeded,
		Skipped:   len(rows) - len(outcomes),
	}, nil
}

// Status reports the backend server version and checks the configured credentials.
func (sm *ScanManager) Status(ctx context.Context) (string, error) {
	version, err := sm.client.Version(ctx)
	if err != nil {
		return "", err
	}

	err = sm.client.Authenticate(ctx)
	if err != nil {
		return version, fmt.Errorf("backend %s is up but login failed: %w", version, err)
	}

	return version, nil
}
