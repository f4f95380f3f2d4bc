package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
	"github.com/kirillkom/crime-report-analyzer/internal/infrastructure/resilience"
)

type connFake struct {
	subject string
	data    [][]byte
	errs    []error
	closed  bool
}

func (f *connFake) Publish(subject string, data []byte) error {
	f.subject = subject
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	f.data = append(f.data, data)
	return nil
}

func (f *connFake) Close() { f.closed = true }

func TestPublishReportExtractedPayload(t *testing.T) {
	c := &connFake{}
	p := newPublisher(c, "", nil)

	report := domain.Report{ReportNumber: "2024-7", PredictedCategory: "ASSAULT"}
	if err := p.PublishReportExtracted(context.Background(), report); err != nil {
		t.Fatalf("PublishReportExtracted() error = %v", err)
	}
	if c.subject != DefaultSubject {
		t.Fatalf("expected default subject, got %q", c.subject)
	}

	var event ReportExtracted
	if err := json.Unmarshal(c.data[0], &event); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if event.Report.ReportNumber != "2024-7" || event.Fingerprint != report.Fingerprint() {
		t.Fatalf("unexpected event %+v", event)
	}
	if p.BreakerState() != "disabled" {
		t.Fatalf("expected disabled breaker without executor")
	}
}

func TestPublishRetriesTransientErrors(t *testing.T) {
	c := &connFake{errs: []error{nats.ErrTimeout}}
	exec := resilience.NewExecutor(resilience.Policy{
		Attempts:       2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	})
	p := newPublisher(c, "custom.subject", exec)

	if err := p.PublishReportExtracted(context.Background(), domain.Report{ReportNumber: "2024-1"}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(c.data) != 1 || c.subject != "custom.subject" {
		t.Fatalf("expected one delivered message on custom.subject, got %d on %q", len(c.data), c.subject)
	}
}

func TestPublishTransientFailureIsTemporary(t *testing.T) {
	c := &connFake{errs: []error{nats.ErrNoServers}}
	p := newPublisher(c, "", nil)

	err := p.PublishReportExtracted(context.Background(), domain.Report{})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
}

func TestClassifyNATSError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		retry bool
	}{
		{name: "timeout", err: fmt.Errorf("wrap: %w", nats.ErrTimeout), retry: true},
		{name: "closed", err: nats.ErrConnectionClosed, retry: true},
		{name: "cancelled", err: context.Canceled, retry: false},
		{name: "payload", err: errors.New("maximum payload exceeded"), retry: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyNATSError(tt.err).Retry; got != tt.retry {
				t.Fatalf("Retry = %v, want %v", got, tt.retry)
			}
		})
	}
}
