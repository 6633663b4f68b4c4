package internal

import (
	"testing"

	"github.com/kcmvp/archunit"
)

func TestArchitecture(t *testing.T) {
	domain := archunit.Packages("domain", []string{".../internal/domain/..."})
	adapters := archunit.Packages("adapters", []string{".../internal/adapters/..."})
	infrastructure := archunit.Packages("infrastructure", []string{".../internal/infrastructure/..."})

	// Domain should not depend on adapters
	if err := domain.ShouldNotReferLayers(adapters); err != nil {
		t.Errorf("Architecture violation: Domain depends on Adapters: %v", err)
	}
	// nor on process wiring
	if err := domain.ShouldNotReferLayers(infrastructure); err != nil {
		t.Errorf("Architecture violation: Domain depends on Infrastructure: %v", err)
	}
}

func TestPortsIndependentOfAdapters(t *testing.T) {
	ports := archunit.Packages("ports", []string{".../internal/ports"})
	adapters := archunit.Packages("adapters", []string{".../internal/adapters/..."})
	if err := ports.ShouldNotReferLayers(adapters); err != nil {
		t.Errorf("Architecture violation: Ports depend on Adapters: %v", err)
	}
}

func TestSOLID(t *testing.T) {
	// Simple check for translator package presence
	translator := archunit.Packages("translator", []string{".../internal/domain/translator"})
	if len(translator.Packages()) == 0 {
		t.Error("No translator package found in domain")
	}
}
