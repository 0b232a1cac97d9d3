package async

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bgv-audit/invoice-audit/internal/audit"
	"github.com/bgv-audit/invoice-audit/internal/entity"
	"github.com/bgv-audit/invoice-audit/internal/linesource"
	"github.com/bgv-audit/invoice-audit/internal/pipeline"
	"github.com/bgv-audit/invoice-audit/internal/provider"
	"github.com/bgv-audit/invoice-audit/internal/repository"
)

type cannedSource struct {
	text  string
	lines []string
}

func (s *cannedSource) RawText(context.Context, string) (string, error) { return s.text, nil }

func (s *cannedSource) TextLines(_ context.Context, _ string, useOCR bool) ([]string, error) {
	if useOCR {
		return nil, linesource.ErrNoText
	}
	return s.lines, nil
}

func (s *cannedSource) Tables(context.Context, string) ([]entity.Table, error) {
	return nil, linesource.ErrNoTables
}

func TestProcessorQueueProcessesJobs(t *testing.T) {
	src := &cannedSource{
		text: "QUEST DIAGNOSTICS\n12345 NDA 9876543 01/15/2024\nAmount Due: $45.00\n",
		lines: []string{
			"01/15/2024 7001234 ABC123 DOE, JANE",
			"DOE, JANE DRUG SCREEN 9 PANEL 0123456 $45.00",
		},
	}
	store := repository.NewMemoryStore()
	proc := pipeline.NewProcessor(
		pipeline.NewExtractor(provider.NewRegistry(nil), src, nil),
		audit.NewEngine(store, nil),
		store, store, nil,
	)

	q := NewProcessorQueue(proc, nil, WithWorkers(2), WithQueueSize(4))

	err := q.Enqueue(context.Background(), Job{
		ID:          uuid.New(),
		Path:        "quest.pdf",
		SubmittedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	inv, err := store.GetInvoice(context.Background(), "9876543")
	if err != nil {
		t.Fatalf("invoice not persisted after drain: %v", err)
	}
	if inv.ProviderName != "Quest Diagnostics" {
		t.Errorf("ProviderName = %q", inv.ProviderName)
	}
}

func TestProcessorQueueShutdownIsIdempotent(t *testing.T) {
	store := repository.NewMemoryStore()
	proc := pipeline.NewProcessor(
		pipeline.NewExtractor(provider.NewRegistry(nil), &cannedSource{}, nil),
		audit.NewEngine(store, nil),
		store, store, nil,
	)
	q := NewProcessorQueue(proc, nil, WithWorkers(1))

	ctx := context.Background()
	q.Shutdown(ctx)
	q.Shutdown(ctx) // second call must not panic on the closed channel

	// A late job is dropped, not pushed onto the closed channel.
	if err := q.Enqueue(ctx, Job{ID: uuid.New(), Path: "late.pdf"}); err != nil {
		t.Fatalf("Enqueue after shutdown: %v", err)
	}
}
