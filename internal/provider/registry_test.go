package provider

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bgv-audit/invoice-audit/constants"
	"github.com/bgv-audit/invoice-audit/internal/common"
)

func TestNewRegistryCoversAllProviders(t *testing.T) {
	r := NewRegistry(nil)
	if diff := cmp.Diff(constants.AllProviders, r.Names()); diff != "" {
		t.Errorf("registered providers mismatch (-want +got):\n%s", diff)
	}
	for _, name := range constants.AllProviders {
		g, err := r.Get(string(name))
		if err != nil {
			t.Errorf("Get(%q): %v", name, err)
			continue
		}
		if g.Name() != name {
			t.Errorf("Get(%q) returned grammar named %q", name, g.Name())
		}
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Get("Acme Screening")
	if !errors.Is(err, common.ErrUnknownProvider) {
		t.Fatalf("Get unknown: err = %v, want ErrUnknownProvider", err)
	}
}

func TestRegistryIdentify(t *testing.T) {
	r := NewRegistry(nil)

	text := "QUEST DIAGNOSTICS INCORPORATED\nInvoice Number: 9876543\nAmount Due: $57.34"
	g, ok := r.Identify(text)
	if !ok {
		t.Fatal("Identify: no provider matched Quest text")
	}
	if g.Name() != constants.ProviderQuest {
		t.Errorf("Identify = %q, want %q", g.Name(), constants.ProviderQuest)
	}

	if _, ok := r.Identify("totally unrelated correspondence"); ok {
		t.Error("Identify matched a document with no vendor signature")
	}
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(NewQuest()); err == nil {
		t.Fatal("Register accepted a duplicate provider")
	}
}
