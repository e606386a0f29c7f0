package loader

import (
	"errors"
	"reflect"
	"testing"

	"veridian-hq/covenant/pkg/contract"
	"veridian-hq/covenant/pkg/dsl/value"
)

func TestProxyExposeAndSeal(t *testing.T) {
	p := NewPartialProxy("validators.dsl")

	p.expose("check_port", value.Int(1), contract.StatusTestedPass)
	p.withhold("helper", contract.StatusUntested)

	if p.Sealed() {
		t.Error("proxy should start unsealed")
	}
	p.seal()
	if !p.Sealed() {
		t.Error("seal() should fix the exposure set")
	}

	// Mutations after sealing are ignored.
	p.expose("late", value.Int(2), contract.StatusTestedPass)
	p.withhold("check_port", contract.StatusTestedFail)

	if got := p.Exposed(); !reflect.DeepEqual(got, []string{"check_port"}) {
		t.Errorf("Exposed() = %v", got)
	}
	if v, err := p.Attr("check_port"); err != nil || !value.Equal(v, value.Int(1)) {
		t.Errorf("Attr(check_port) = %v, %v", v, err)
	}
}

func TestProxyAttrCarriesVerdict(t *testing.T) {
	p := NewPartialProxy("validators.dsl")
	p.withhold("helper", contract.StatusTestedFail)
	p.seal()

	_, err := p.Attr("helper")
	var unexposed *contract.UnexposedSymbolError
	if !errors.As(err, &unexposed) {
		t.Fatalf("Attr(helper) error = %T, want UnexposedSymbolError", err)
	}
	if unexposed.Status != contract.StatusTestedFail {
		t.Errorf("status = %s, want tested-fail", unexposed.Status)
	}
	if unexposed.Module != "validators.dsl" || unexposed.Symbol != "helper" {
		t.Errorf("error = %+v", unexposed)
	}

	_, err = p.Attr("never_mentioned")
	if !errors.As(err, &unexposed) || unexposed.Status != contract.StatusUntested {
		t.Errorf("unknown symbol should default to untested, got %v", err)
	}
}
