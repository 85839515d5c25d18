package scan

import (
	"context"
	"errors"
	"log"
	"sync/atomic"

	"github.com/larkwiot/shelfscan/internal/notify"
	"github.com/larkwiot/shelfscan/internal/rpc"
)

const (
	TitleSuccess = "Scan Successful"
	TitleFailure = "Scan Error"
	TitleFault   = "Error"

	DefaultFailureText = "Scan failed"
	DefaultFaultText   = "An error occurred"
	BusyText           = "A scan is already in progress"
)

type Kind string

const (
	KindSuccess Kind = "success"
	// KindBusinessFailure means the backend completed the call and reported success = false.
	KindBusinessFailure Kind = "business_failure"
	// KindTransportFault means the call did not complete or its answer could not be decoded.
	KindTransportFault Kind = "transport_fault"
	// KindBusy means the submission was rejected because another one was in flight.
	KindBusy Kind = "busy"
)

type Outcome struct {
	Kind         Kind
	Notification notify.Notification
	Err          error
}

func (o Outcome) Succeeded() bool {
	return o.Kind == KindSuccess
}

// RemoteCaller performs the create_and_process operation.
type RemoteCaller interface {
	CreateAndProcess(ctx context.Context, req rpc.ScanRequest) (rpc.ScanResult, error)
}

type Submitter struct {
	remote   RemoteCaller
	notifier notify.Notifier
	busy     atomic.Bool
}

func NewSubmitter(remote RemoteCaller, notifier notify.Notifier) *Submitter {
	return &Submitter{
		remote:   remote,
		notifier: notifier,
	}
}

// InProgress reports whether a submission is currently in flight.
func (s *Submitter) InProgress() bool {
	return s.busy.Load()
}

// Submit sends one scan and raises exactly one notification for it. Identifiers are
// passed through untouched. Once the remote call starts it is not cancelled by ctx.
func (s *Submitter) Submit(ctx context.Context, memberIdentifier string, itemIdentifier string) Outcome {
	if !s.busy.CompareAndSwap(false, true) {
		return s.raise(Outcome{
			Kind: KindBusy,
			Notification: notify.Notification{
				Text:  BusyText,
				Type:  notify.TypeDanger,
				Title: TitleFailure,
			},
		})
	}
	defer s.busy.Store(false)

	result, err := s.remote.CreateAndProcess(context.WithoutCancel(ctx), rpc.ScanRequest{
		MemberBarcode: memberIdentifier,
		BookBarcode:   itemIdentifier,
		Operation:     rpc.OperationAuto,
	})

	if err != nil {
		log.Printf("warning: scan of %s for %s faulted: %s\n", itemIdentifier, memberIdentifier, err.Error())
		return s.raise(Outcome{
			Kind: KindTransportFault,
			Notification: notify.Notification{
				Text:  orDefault(faultMessage(err), DefaultFaultText),
				Type:  notify.TypeDanger,
				Title: TitleFault,
			},
			Err: err,
		})
	}

	if result.Success {
		return s.raise(Outcome{
			Kind: KindSuccess,
			Notification: notify.Notification{
				Text:  result.Message.OrEmpty(),
				Type:  notify.TypeSuccess,
				Title: TitleSuccess,
			},
		})
	}

	return s.raise(Outcome{
		Kind: KindBusinessFailure,
		Notification: notify.Notification{
			Text:  orDefault(result.Message.OrEmpty(), DefaultFailureText),
			Type:  notify.TypeDanger,
			Title: TitleFailure,
		},
	})
}

func (s *Submitter) raise(outcome Outcome) Outcome {
	s.notifier.Notify(outcome.Notification)
	return outcome
}

func faultMessage(err error) string {
	var fault *rpc.Fault
	if errors.As(err, &fault) {
		return fault.Message()
	}
	return err.Error()
}

func orDefault(s string, fallback string) string {
	if len(s) == 0 {
		return fallback
	}
	return s
}
