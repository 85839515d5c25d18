package wedge

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log"
	"strings"

	"github.com/larkwiot/shelfscan/internal/config"
)

// Reader turns keyboard-wedge keystrokes into scans. Wedge scanners end each scan with
// CR, LF or TAB depending on how they are programmed.
type Reader struct {
	prefix string
	suffix string
}

func NewReader(conf *config.ScannerConfig) *Reader {
	return &Reader{
		prefix: conf.Prefix,
		suffix: conf.Suffix,
	}
}

// MaxScanLength bounds a single scan. Longer runs without a terminator are dropped.
const MaxScanLength = 4096

type splitter struct {
	discarding bool
}

func (sp *splitter) split(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n\t"); i >= 0 {
		if sp.discarding {
			sp.discarding = false
			return i + 1, nil, nil
		}
		return i + 1, data[:i], nil
	}

	if sp.discarding {
		return len(data), nil, nil
	}

	if len(data) >= MaxScanLength {
		log.Printf("warning: dropping scan longer than %d bytes, is the scanner terminator configured?\n", MaxScanLength)
		sp.discarding = true
		return len(data), nil, nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Clean strips scanner framing and surrounding spaces; an empty result means no scan.
func (r *Reader) Clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, r.prefix)
	s = strings.TrimSuffix(s, r.suffix)
	return strings.TrimSpace(s)
}

// Scans delivers cleaned scans until input ends or ctx is done. The error channel
// receives at most one read error and is closed with the scan channel.
func (r *Reader) Scans(ctx context.Context, input io.Reader) (<-chan string, <-chan error) {
	scans := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(scans)
		defer close(errs)

		sp := &splitter{}
		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 0, 512), 2*MaxScanLength)
		scanner.Split(sp.split)

		for scanner.Scan() {
			scan := r.Clean(scanner.Text())
			if len(scan) == 0 {
				continue
			}

			select {
			case scans <- scan:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			errs <- err
		}
	}()

	return scans, errs
}
