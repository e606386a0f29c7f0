package container

import (
	"reflect"
	"testing"

	"veridian-hq/covenant/pkg/dsl/value"
)

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("cache", value.Str("cache-service")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	svc, ok := r.Get("cache")
	if !ok {
		t.Fatal("Get() should find a registered service")
	}
	if !value.Equal(svc, value.Str("cache-service")) {
		t.Errorf("Get() = %v", svc)
	}

	if _, ok := r.Get("missing"); ok {
		t.Error("Get() of unknown name should report absence")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("db", value.Int(1)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register("db", value.Int(2)); err == nil {
		t.Fatal("second Register() of the same name should fail")
	}
	if svc, _ := r.Get("db"); !value.Equal(svc, value.Int(1)) {
		t.Errorf("duplicate registration should not replace, got %v", svc)
	}
}

func TestNamesSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(name, value.NilValue); err != nil {
			t.Fatal(err)
		}
	}
	if got := r.Names(); !reflect.DeepEqual(got, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("Names() = %v", got)
	}
}
