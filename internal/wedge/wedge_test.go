package wedge_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/larkwiot/shelfscan/internal/config"
	"github.com/larkwiot/shelfscan/internal/wedge"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
)

func collect(t *testing.T, reader *wedge.Reader, input io.Reader) ([]string, error) {
	scans, errs := reader.Scans(context.Background(), input)
	got := make([]string, 0)
	for s := range scans {
		got = append(got, s)
	}
	return got, <-errs
}

func TestReaderSplitsOnWedgeTerminators(t *testing.T) {
	reader := wedge.NewReader(&config.ScannerConfig{})
	got, err := collect(t, reader, strings.NewReader("MEM001\r\nBOOK001\rBOOK002\tBOOK003\n\n   \nBOOK004"))

	assert.NoError(t, err)
	assert.Equal(t, []string{"MEM001", "BOOK001", "BOOK002", "BOOK003", "BOOK004"}, got)
}

func TestReaderStripsFraming(t *testing.T) {
	reader := wedge.NewReader(&config.ScannerConfig{Prefix: "]E0", Suffix: "#"})
	got, err := collect(t, reader, strings.NewReader("]E09781718501263#\n]E0#\nPLAIN\n"))

	assert.NoError(t, err)
	assert.Equal(t, []string{"9781718501263", "PLAIN"}, got)
}

func TestReaderDropsOverlongScan(t *testing.T) {
	reader := wedge.NewReader(&config.ScannerConfig{})
	input := "MEM001\n" + strings.Repeat("9", 3*wedge.MaxScanLength) + "\nBOOK001\n" + strings.Repeat("7", wedge.MaxScanLength+1)
	got, err := collect(t, reader, strings.NewReader(input))

	assert.NoError(t, err)
	assert.Equal(t, []string{"MEM001", "BOOK001"}, got)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("device unplugged")
}

func TestReaderReportsReadError(t *testing.T) {
	_, err := collect(t, wedge.NewReader(&config.ScannerConfig{}), failingReader{})
	assert.EqualError(t, err, "device unplugged")
}

func TestReaderStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := wedge.NewReader(&config.ScannerConfig{})
	scans, _ := reader.Scans(ctx, strings.NewReader("A\nB\nC\n"))

	assert.Equal(t, "A", <-scans)
	cancel()

	for range scans {
	}
}

func TestRouterAlternatesWithoutPrefix(t *testing.T) {
	router := wedge.NewRouter("")

	assert.True(t, router.Route("M001").IsAbsent())
	assert.Equal(t, mo.Some(wedge.Pair{Member: "M001", Item: "B001"}), router.Route("B001"))
	assert.True(t, router.State().InProgress)
	router.Done()

	assert.Equal(t, "", router.State().MemberIdentifier)
	assert.True(t, router.Route("M002").IsAbsent())
	assert.Equal(t, mo.Some(wedge.Pair{Member: "M002", Item: "B002"}), router.Route("B002"))
}

func TestRouterKeepsMemberWithPrefix(t *testing.T) {
	router := wedge.NewRouter("MEM")

	assert.True(t, router.Route("BOOK000").IsAbsent())
	assert.True(t, router.Route("MEM001").IsAbsent())
	assert.Equal(t, "", router.State().ItemIdentifier, "a member scan starts a fresh pair")

	assert.Equal(t, mo.Some(wedge.Pair{Member: "MEM001", Item: "BOOK001"}), router.Route("BOOK001"))
	router.Done()
	assert.Equal(t, mo.Some(wedge.Pair{Member: "MEM001", Item: "BOOK002"}), router.Route("BOOK002"))
	router.Done()

	assert.True(t, router.Route("MEM002").IsAbsent())
	assert.Equal(t, mo.Some(wedge.Pair{Member: "MEM002", Item: "BOOK003"}), router.Route("BOOK003"))
}
