package symtab_test

import (
	"errors"
	"testing"

	"tacc/internal/symtab"
)

func TestAddressesAreMonotonicAndVariableOnly(t *testing.T) {
	tab := symtab.New()
	if err := tab.DeclareVariable("x", symtab.TypeNumber); err != nil {
		t.Fatal(err)
	}
	if err := tab.DeclareFunction("add", symtab.TypeNumber, []symtab.DataType{symtab.TypeNumber, symtab.TypeNumber}); err != nil {
		t.Fatal(err)
	}
	if err := tab.DeclareVariable("s", symtab.TypeString); err != nil {
		t.Fatal(err)
	}

	all := tab.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 symbols, got %d", len(all))
	}
	if all[0].Name != "x" || all[0].Address != 0 || !all[0].HasAddress {
		t.Errorf("unexpected x: %+v", all[0])
	}
	if !all[1].IsFunction || all[1].HasAddress || len(all[1].Params) != 2 {
		t.Errorf("unexpected add: %+v", all[1])
	}
	if all[2].Address != 1 {
		t.Errorf("expected s at address 1, got %d", all[2].Address)
	}
	if tab.NextAddress() != 2 {
		t.Errorf("expected next address 2, got %d", tab.NextAddress())
	}

	if _, err := tab.VariableAddress("add"); !errors.Is(err, symtab.ErrNotFound) {
		t.Errorf("functions have no address, got %v", err)
	}
	if _, err := tab.FunctionInfo("x"); !errors.Is(err, symtab.ErrNotFound) {
		t.Errorf("x is not a function, got %v", err)
	}
}

func TestRedeclarationIsAnError(t *testing.T) {
	tests := []struct {
		name    string
		declare func(*symtab.Table) error
		want    string
	}{
		{
			name:    "variable",
			declare: func(tab *symtab.Table) error { return tab.DeclareVariable("x", symtab.TypeNumber) },
			want:    "variable 'x' already declared in current scope: symbol redeclared",
		},
		{
			name:    "function",
			declare: func(tab *symtab.Table) error { return tab.DeclareFunction("x", symtab.TypeNumber, nil) },
			want:    "function 'x' already declared: symbol redeclared",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := symtab.New()
			if err := tab.DeclareVariable("x", symtab.TypeNumber); err != nil {
				t.Fatal(err)
			}
			err := tt.declare(tab)
			if !errors.Is(err, symtab.ErrRedeclared) {
				t.Fatalf("expected ErrRedeclared, got %v", err)
			}
			if err.Error() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestScopeExitRemovesInnerSymbols(t *testing.T) {
	tab := symtab.New()
	_ = tab.DeclareVariable("g", symtab.TypeNumber)

	tab.EnterScope()
	if tab.CurrentScope() != 1 {
		t.Fatalf("expected scope 1, got %d", tab.CurrentScope())
	}
	_ = tab.DeclareVariable("a", symtab.TypeNumber)
	if s, ok := tab.Lookup("g"); !ok || s.Scope != 0 {
		t.Fatal("outer symbols must stay visible inside a scope")
	}
	tab.ExitScope()

	if _, ok := tab.Lookup("a"); ok {
		t.Fatal("a must be removed with its scope")
	}
	if got := len(tab.All()); got != 1 {
		t.Fatalf("expected only g to remain, got %d symbols", got)
	}
	// the name is free again, and addresses keep growing
	if err := tab.DeclareVariable("a", symtab.TypeNumber); err != nil {
		t.Fatalf("redeclaring after scope exit: %v", err)
	}
	if addr, _ := tab.VariableAddress("a"); addr != 2 {
		t.Errorf("expected address 2, got %d", addr)
	}

	tab.EnterScope()
	if tab.CurrentScope() != 2 {
		t.Errorf("scope ids are never reused, expected 2, got %d", tab.CurrentScope())
	}
	tab.ExitScope()
	tab.ExitScope() // global scope stays
	if tab.CurrentScope() != 0 {
		t.Errorf("expected global scope, got %d", tab.CurrentScope())
	}
}

func TestInnerScopeShadowsOuterName(t *testing.T) {
	tab := symtab.New()
	_ = tab.DeclareVariable("a", symtab.TypeString)

	tab.EnterScope()
	if err := tab.DeclareVariable("a", symtab.TypeNumber); err != nil {
		t.Fatalf("shadowing in a nested scope must be allowed: %v", err)
	}
	s, _ := tab.Lookup("a")
	if s.Type != symtab.TypeNumber || s.Address != 1 {
		t.Errorf("expected the inner a, got %+v", s)
	}
	if err := tab.DeclareVariable("a", symtab.TypeNumber); !errors.Is(err, symtab.ErrRedeclared) {
		t.Errorf("second declaration in the same scope must fail, got %v", err)
	}
	tab.ExitScope()

	s, _ = tab.Lookup("a")
	if s.Type != symtab.TypeString || s.Address != 0 {
		t.Errorf("expected the outer a back, got %+v", s)
	}
}
