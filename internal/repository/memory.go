package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bgv-audit/invoice-audit/internal/common"
	"github.com/bgv-audit/invoice-audit/internal/entity"
)

// MemoryStore is an in-memory FingerprintStore and InvoiceStore. Used in
// tests and for dry runs where nothing should persist.
type MemoryStore struct {
	mu           sync.RWMutex
	fingerprints map[string]entity.FingerprintRecord
	invoices     map[string]entity.Invoice
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		fingerprints: make(map[string]entity.FingerprintRecord),
		invoices:     make(map[string]entity.Invoice),
	}
}

func (s *MemoryStore) GetFingerprint(_ context.Context, fingerprintID string) (*entity.FingerprintRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.fingerprints[fingerprintID]
	if !ok {
		return nil, fmt.Errorf("fingerprint %s: %w", fingerprintID, common.ErrNotFound)
	}
	out := rec
	return &out, nil
}

func (s *MemoryStore) SaveFingerprints(_ context.Context, records []entity.FingerprintRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for _, rec := range records {
		if _, exists := s.fingerprints[rec.FingerprintID]; exists {
			continue
		}
		s.fingerprints[rec.FingerprintID] = rec
		inserted++
	}
	return inserted, nil
}

func (s *MemoryStore) SaveInvoice(_ context.Context, inv *entity.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.ID] = *inv
	return nil
}

func (s *MemoryStore) GetInvoice(_ context.Context, id string) (*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, common.ErrNotFound)
	}
	out := inv
	return &out, nil
}

func (s *MemoryStore) ListInvoices(_ context.Context, limit int) ([]entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessedAt.After(out[j].ProcessedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
