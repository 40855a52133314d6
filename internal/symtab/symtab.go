// Package symtab is the name table shared by code generation and CPU emission.
//
// A name is unique within the scope that declares it. An inner scope may
// shadow an outer name; the shadow disappears when its scope exits.
package symtab

import (
	"errors"
	"fmt"
)

// DataType is the inferred type recorded for a symbol.
type DataType uint8

const (
	TypeNumber DataType = iota
	TypeString
	TypeBoolean
	TypeVoid
)

func (t DataType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeBoolean:
		return "boolean"
	case TypeVoid:
		return "void"
	}
	return "unknown"
}

func (t DataType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *DataType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "number":
		*t = TypeNumber
	case "string":
		*t = TypeString
	case "boolean":
		*t = TypeBoolean
	case "void":
		*t = TypeVoid
	default:
		return fmt.Errorf("unknown data type %q", b)
	}
	return nil
}

// ErrRedeclared is wrapped by every duplicate-declaration error.
var ErrRedeclared = errors.New("symbol redeclared")

// ErrNotFound is wrapped by lookups that miss or hit the wrong kind.
var ErrNotFound = errors.New("symbol not found")

type Symbol struct {
	Name       string     `json:"name" msgpack:"name"`
	Type       DataType   `json:"type" msgpack:"type"`
	Scope      int        `json:"scope" msgpack:"scope"`
	IsFunction bool       `json:"isFunction" msgpack:"is_function"`
	Params     []DataType `json:"parameters,omitempty" msgpack:"params,omitempty"`
	Address    int        `json:"address" msgpack:"address"`
	HasAddress bool       `json:"hasAddress" msgpack:"has_address"`
}

// Table is not safe for concurrent use; every compilation owns its own.
type Table struct {
	symbols     map[string][]*Symbol // innermost last
	order       []*Symbol            // порядок объявления для All
	scopeStack  []int
	current     int
	lastScope   int
	nextAddress int
}

func New() *Table {
	return &Table{
		symbols:    make(map[string][]*Symbol),
		scopeStack: []int{0},
	}
}

// EnterScope opens a fresh scope id nested in the current one.
func (t *Table) EnterScope() {
	t.lastScope++
	t.current = t.lastScope
	t.scopeStack = append(t.scopeStack, t.current)
}

// ExitScope drops every symbol declared deeper than the scope it returns to.
// Exiting the global scope is a no-op.
func (t *Table) ExitScope() {
	if len(t.scopeStack) <= 1 {
		return
	}
	t.scopeStack = t.scopeStack[:len(t.scopeStack)-1]
	t.current = t.scopeStack[len(t.scopeStack)-1]

	kept := t.order[:0]
	for _, s := range t.order {
		if s.Scope <= t.current {
			kept = append(kept, s)
			continue
		}
		stack := t.symbols[s.Name]
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			delete(t.symbols, s.Name)
		} else {
			t.symbols[s.Name] = stack
		}
	}
	clear(t.order[len(kept):])
	t.order = kept
}

// DeclareVariable registers name with the next free address.
func (t *Table) DeclareVariable(name string, typ DataType) error {
	if t.declaredHere(name) {
		return fmt.Errorf("variable '%s' already declared in current scope: %w", name, ErrRedeclared)
	}
	t.insert(&Symbol{
		Name:       name,
		Type:       typ,
		Scope:      t.current,
		Address:    t.nextAddress,
		HasAddress: true,
	})
	t.nextAddress++
	return nil
}

// DeclareFunction registers a function; functions never get an address.
func (t *Table) DeclareFunction(name string, ret DataType, params []DataType) error {
	if t.declaredHere(name) {
		return fmt.Errorf("function '%s' already declared: %w", name, ErrRedeclared)
	}
	t.insert(&Symbol{
		Name:       name,
		Type:       ret,
		Scope:      t.current,
		IsFunction: true,
		Params:     append([]DataType(nil), params...),
	})
	return nil
}

func (t *Table) declaredHere(name string) bool {
	s, ok := t.Lookup(name)
	return ok && s.Scope == t.current
}

func (t *Table) insert(s *Symbol) {
	t.symbols[s.Name] = append(t.symbols[s.Name], s)
	t.order = append(t.order, s)
}

// Lookup returns the innermost symbol visible under name.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	stack := t.symbols[name]
	if len(stack) == 0 {
		return nil, false
	}
	return stack[len(stack)-1], true
}

// VariableAddress returns the address of a declared variable.
func (t *Table) VariableAddress(name string) (int, error) {
	s, ok := t.Lookup(name)
	if !ok || s.IsFunction {
		return 0, fmt.Errorf("variable '%s' not found: %w", name, ErrNotFound)
	}
	return s.Address, nil
}

// FunctionInfo returns the entry of a declared function.
func (t *Table) FunctionInfo(name string) (*Symbol, error) {
	s, ok := t.Lookup(name)
	if !ok || !s.IsFunction {
		return nil, fmt.Errorf("function '%s' not found: %w", name, ErrNotFound)
	}
	return s, nil
}

// All returns copies of the live symbols in declaration order.
func (t *Table) All() []Symbol {
	out := make([]Symbol, 0, len(t.order))
	for _, s := range t.order {
		out = append(out, *s)
	}
	return out
}

func (t *Table) CurrentScope() int { return t.current }

func (t *Table) NextAddress() int { return t.nextAddress }
