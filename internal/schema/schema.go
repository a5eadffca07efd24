// Package schema maps free-form spreadsheet headers onto the canonical roles
// the catalogue pipeline understands (title, brand, price and so on).
//
// Matching is driven entirely by the DefaultKeywords table: a column is a
// candidate for a role when its lowercased name contains one of the role's
// keywords. The leftmost matching column wins.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmylchreest/refyne-catalog/internal/table"
)

// Role is a canonical semantic field of a product record.
type Role string

const (
	RoleTitle       Role = "title"
	RoleBrand       Role = "brand"
	RoleSKU         Role = "sku"
	RoleBarcode     Role = "barcode"
	RoleQuantity    Role = "quantity"
	RolePrice       Role = "price"
	RoleContent     Role = "content"
	RoleCategory    Role = "category"
	RoleSubcategory Role = "subcategory"
	RoleOrigin      Role = "origin"
	RoleLink        Role = "link"
)

// Roles lists every role in resolution order. Title comes first.
var Roles = []Role{
	RoleTitle,
	RoleBrand,
	RoleSKU,
	RoleBarcode,
	RoleQuantity,
	RolePrice,
	RoleContent,
	RoleCategory,
	RoleSubcategory,
	RoleOrigin,
	RoleLink,
}

// DefaultKeywords is the role -> keyword table used by Infer. Keywords are
// lowercase and matched as substrings of the lowercased column name.
var DefaultKeywords = map[Role][]string{
	RoleTitle:       {"title", "name", "product", "назв", "наимен", "име", "продукт"},
	RoleBrand:       {"brand", "vendor", "manufacturer", "марка", "бранд", "производител"},
	RoleSKU:         {"sku", "артикул", "article", "model", "модел"},
	RoleBarcode:     {"barcode", "ean", "gtin", "upc", "баркод", "штрих"},
	RoleQuantity:    {"qty", "quantity", "stock", "нал", "колич", "брой"},
	RolePrice:       {"price", "цена", "cost", "стойност"},
	RoleContent:     {"content", "volume", "capacity", "обем", "съдърж", "разфасовка"},
	RoleCategory:    {"category", "катег"},
	RoleSubcategory: {"subcategory", "sub-category", "подкатег"},
	RoleOrigin:      {"origin", "country", "произход", "страна"},
	RoleLink:        {"link", "url", "href", "линк", "връзка"},
}

// DefaultExclusions keeps a role from claiming a column that plainly belongs
// to a more specific role ("Subcategory" contains "category").
var DefaultExclusions = map[Role][]string{
	RoleCategory: {"subcategory", "sub-category", "sub category", "подкатег"},
}

var (
	ErrUnknownRole      = errors.New("unknown role")
	ErrUnknownColumn    = errors.New("column not found in header")
	ErrAmbiguousMapping = errors.New("column mapped to more than one role")
)

// ParseRole converts user input ("Title", " price ") into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := DefaultKeywords[r]; ok {
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Source records how a role got its column.
type Source string

const (
	SourceOverride Source = "override"
	SourceKeyword  Source = "keyword"
	SourceFallback Source = "fallback"
)

// Assignment is one resolved role.
type Assignment struct {
	Role   Role   `json:"role"`
	Column string `json:"column"`
	Source Source `json:"source"`
}

// ColumnMap is the immutable result of Infer.
type ColumnMap struct {
	assignments map[Role]Assignment
}

// Column returns the column mapped to role.
func (m ColumnMap) Column(role Role) (string, bool) {
	a, ok := m.assignments[role]
	return a.Column, ok
}

// Has reports whether role is mapped.
func (m ColumnMap) Has(role Role) bool {
	_, ok := m.assignments[role]
	return ok
}

// Value returns the trimmed cell for role, or "" when the role is unmapped.
func (m ColumnMap) Value(row table.Row, role Role) string {
	col, ok := m.Column(role)
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Assignments returns the mapped roles in Roles order.
func (m ColumnMap) Assignments() []Assignment {
	out := make([]Assignment, 0, len(m.assignments))
	for _, role := range Roles {
		if a, ok := m.assignments[role]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Shared returns every column claimed by more than one role, with the roles
// in Roles order.
func (m ColumnMap) Shared() map[string][]Role {
	byColumn := make(map[string][]Role)
	for _, a := range m.Assignments() {
		byColumn[a.Column] = append(byColumn[a.Column], a.Role)
	}
	for col, roles := range byColumn {
		if len(roles) < 2 {
			delete(byColumn, col)
		}
	}
	return byColumn
}

// SharedColumns returns the keys of Shared in sorted order.
func (m ColumnMap) SharedColumns() []string {
	shared := m.Shared()
	cols := make([]string, 0, len(shared))
	for col := range shared {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Overrides pins roles to explicit columns.
type Overrides map[Role]string

// Merge returns a copy of o with every non-empty entry of other applied on top.
func (o Overrides) Merge(other Overrides) Overrides {
	out := make(Overrides, len(o)+len(other))
	for role, col := range o {
		if strings.TrimSpace(col) != "" {
			out[role] = col
		}
	}
	for role, col := range other {
		if strings.TrimSpace(col) != "" {
			out[role] = col
		}
	}
	return out
}

// Infer builds a ColumnMap for the given header. Overrides win over keyword
// matching. An override naming a missing column, or two overrides naming the
// same column, is an error. Title falls back to the first column when no
// keyword matches; every other role is left unmapped.
func Infer(columns []string, overrides Overrides) (ColumnMap, error) {
	for role := range overrides {
		if _, ok := DefaultKeywords[role]; !ok {
			return ColumnMap{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
		}
	}

	m := ColumnMap{assignments: make(map[Role]Assignment, len(Roles))}

	claimed := make(map[string]Role, len(overrides))
	for _, role := range Roles {
		requested, ok := overrides[role]
		if !ok || strings.TrimSpace(requested) == "" {
			continue
		}
		col, err := findColumn(columns, requested)
		if err != nil {
			return ColumnMap{}, fmt.Errorf("override %s=%q: %w", role, requested, err)
		}
		if other, taken := claimed[col]; taken {
			return ColumnMap{}, fmt.Errorf("%w: %q requested for both %s and %s", ErrAmbiguousMapping, col, other, role)
		}
		claimed[col] = role
		m.assignments[role] = Assignment{Role: role, Column: col, Source: SourceOverride}
	}
	for _, role := range Roles {
		if m.Has(role) {
			continue
		}
		if col, ok := matchColumn(columns, DefaultKeywords[role], DefaultExclusions[role]); ok {
			m.assignments[role] = Assignment{Role: role, Column: col, Source: SourceKeyword}
		}
	}

	if !m.Has(RoleTitle) && len(columns) > 0 {
		m.assignments[RoleTitle] = Assignment{Role: RoleTitle, Column: columns[0], Source: SourceFallback}
	}

	return m, nil
}

func matchColumn(columns, keywords, exclusions []string) (string, bool) {
	for _, col := range columns {
		name := strings.ToLower(col)
		if containsAny(name, exclusions) {
			continue
		}
		if containsAny(name, keywords) {
			return col, true
		}
	}
	return "", false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// findColumn resolves a requested name exactly, then case-insensitively when
// that is unambiguous.
func findColumn(columns []string, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	for _, col := range columns {
		if col == requested {
			return col, nil
		}
	}
	var match string
	for _, col := range columns {
		if strings.EqualFold(col, requested) {
			if match != "" {
				return "", fmt.Errorf("%w: %q matches %q and %q", ErrAmbiguousMapping, requested, match, col)
			}
			match = col
		}
	}
	if match == "" {
		return "", ErrUnknownColumn
	}
	return match, nil
}
