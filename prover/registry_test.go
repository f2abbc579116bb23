package prover

import "testing"

func TestRegistryRegisterGet(t *testing.T) {
	r := NewRegistry()
	b := NewMockBackend()

	if err := r.Register("mock", b); err != nil {
		t.Fatalf("Register: %v", err)
	}
	got, err := r.Get("mock")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != b {
		t.Fatal("Get returned a different backend than registered")
	}
}

func TestRegistryDuplicateRegister(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("mock", NewMockBackend()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("mock", NewMockBackend()); err != ErrBackendExists {
		t.Fatalf("err = %v, want ErrBackendExists", err)
	}
}

func TestRegistryGetMissing(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("missing"); err != ErrBackendNotFound {
		t.Fatalf("err = %v, want ErrBackendNotFound", err)
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	r.Register("a", NewMockBackend())
	r.Register("b", NewMockBackend())

	names := r.Names()
	if len(names) != 2 {
		t.Fatalf("len(names) = %d, want 2", len(names))
	}
}
