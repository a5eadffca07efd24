package schema

import (
	"errors"
	"testing"

	"github.com/jmylchreest/refyne-catalog/internal/table"
)

// ========================================
// Keyword Table Tests
// ========================================

func TestDefaultKeywords_PerRole(t *testing.T) {
	tests := []struct {
		role   Role
		column string
	}{
		{RoleTitle, "Product Title"},
		{RoleTitle, "Наименование"},
		{RoleTitle, "Име"},
		{RoleBrand, "Vendor"},
		{RoleBrand, "Марка"},
		{RoleBrand, "Производител"},
		{RoleSKU, "SKU"},
		{RoleSKU, "Артикул №"},
		{RoleBarcode, "EAN-13"},
		{RoleBarcode, "Баркод"},
		{RoleQuantity, "Qty"},
		{RoleQuantity, "Наличност"},
		{RoleQuantity, "Количество"},
		{RolePrice, "Unit Price"},
		{RolePrice, "Цена с ДДС"},
		{RoleContent, "Volume"},
		{RoleContent, "Разфасовка"},
		{RoleCategory, "Category"},
		{RoleCategory, "Категория"},
		{RoleSubcategory, "Sub-Category"},
		{RoleSubcategory, "Подкатегория"},
		{RoleOrigin, "Country of origin"},
		{RoleOrigin, "Произход"},
		{RoleLink, "Product URL"},
		{RoleLink, "Линк"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+tt.column, func(t *testing.T) {
			m, err := Infer([]string{"zzz", tt.column}, nil)
			if err != nil {
				t.Fatalf("Infer() unexpected error: %v", err)
			}
			got, ok := m.Column(tt.role)
			if !ok || got != tt.column {
				t.Errorf("Column(%s) = %q (%v), want %q", tt.role, got, ok, tt.column)
			}
		})
	}
}

func TestDefaultKeywords_CoverEveryRole(t *testing.T) {
	for _, role := range Roles {
		if len(DefaultKeywords[role]) == 0 {
			t.Errorf("role %s has no keywords", role)
		}
	}
	if len(DefaultKeywords) != len(Roles) {
		t.Errorf("DefaultKeywords has %d roles, Roles has %d", len(DefaultKeywords), len(Roles))
	}
}

// ========================================
// Infer Tests
// ========================================

func TestInfer_LeftmostWins(t *testing.T) {
	m, err := Infer([]string{"Price EUR", "Price BGN"}, nil)
	if err != nil {
		t.Fatalf("Infer() unexpected error: %v", err)
	}
	if got, _ := m.Column(RolePrice); got != "Price EUR" {
		t.Errorf("Column(price) = %q, want %q", got, "Price EUR")
	}
}

func TestInfer_TitleFallsBackToFirstColumn(t *testing.T) {
	m, err := Infer([]string{"Описание", "Цена"}, nil)
	if err != nil {
		t.Fatalf("Infer() unexpected error: %v", err)
	}
	got, _ := m.Column(RoleTitle)
	if got != "Описание" {
		t.Errorf("Column(title) = %q, want %q", got, "Описание")
	}
	if a := m.Assignments()[0]; a.Source != SourceFallback {
		t.Errorf("title source = %s, want %s", a.Source, SourceFallback)
	}
	if m.Has(RoleBrand) {
		t.Error("brand should stay unmapped")
	}
}

func TestInfer_SubcategoryNotCategory(t *testing.T) {
	m, err := Infer([]string{"Subcategory", "Category"}, nil)
	if err != nil {
		t.Fatalf("Infer() unexpected error: %v", err)
	}
	if got, _ := m.Column(RoleCategory); got != "Category" {
		t.Errorf("Column(category) = %q, want %q", got, "Category")
	}
	if got, _ := m.Column(RoleSubcategory); got != "Subcategory" {
		t.Errorf("Column(subcategory) = %q, want %q", got, "Subcategory")
	}
}

func TestInfer_Deterministic(t *testing.T) {
	header := []string{"Product Name", "Brand", "EAN", "Stock", "Price", "Category", "Link"}
	first, err := Infer(header, nil)
	if err != nil {
		t.Fatalf("Infer() unexpected error: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := Infer(header, nil)
		if err != nil {
			t.Fatalf("Infer() unexpected error: %v", err)
		}
		a, b := first.Assignments(), again.Assignments()
		if len(a) != len(b) {
			t.Fatalf("run %d: %d assignments, want %d", i, len(b), len(a))
		}
		for j := range a {
			if a[j] != b[j] {
				t.Errorf("run %d: assignment %d = %+v, want %+v", i, j, b[j], a[j])
			}
		}
	}
}

func TestInfer_SharedColumns(t *testing.T) {
	m, err := Infer([]string{"Brand Name", "Price"}, nil)
	if err != nil {
		t.Fatalf("Infer() unexpected error: %v", err)
	}
	shared := m.Shared()
	roles := shared["Brand Name"]
	if len(roles) != 2 || roles[0] != RoleTitle || roles[1] != RoleBrand {
		t.Errorf("Shared()[Brand Name] = %v, want [title brand]", roles)
	}
	if cols := m.SharedColumns(); len(cols) != 1 || cols[0] != "Brand Name" {
		t.Errorf("SharedColumns() = %v, want [Brand Name]", cols)
	}
}

// ----------------------------------------
// Override Tests
// ----------------------------------------

func TestInfer_Overrides(t *testing.T) {
	header := []string{"Name", "Maker", "Price"}

	m, err := Infer(header, Overrides{RoleBrand: "maker"})
	if err != nil {
		t.Fatalf("Infer() unexpected error: %v", err)
	}
	if got, _ := m.Column(RoleBrand); got != "Maker" {
		t.Errorf("Column(brand) = %q, want %q", got, "Maker")
	}
	for _, a := range m.Assignments() {
		if a.Role == RoleBrand && a.Source != SourceOverride {
			t.Errorf("brand source = %s, want %s", a.Source, SourceOverride)
		}
	}
}

func TestInfer_OverrideErrors(t *testing.T) {
	header := []string{"Name", "Maker", "Price"}

	tests := []struct {
		name      string
		overrides Overrides
		want      error
	}{
		{
			name:      "unknown column",
			overrides: Overrides{RoleBrand: "Manufacturer"},
			want:      ErrUnknownColumn,
		},
		{
			name:      "same column twice",
			overrides: Overrides{RoleBrand: "Maker", RoleTitle: "Maker"},
			want:      ErrAmbiguousMapping,
		},
		{
			name:      "unknown role",
			overrides: Overrides{Role("colour"): "Name"},
			want:      ErrUnknownRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Infer(header, tt.overrides)
			if !errors.Is(err, tt.want) {
				t.Errorf("Infer() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOverrides_Merge(t *testing.T) {
	base := Overrides{RoleBrand: "Maker", RoleSKU: "Code"}
	merged := base.Merge(Overrides{RoleSKU: "Art", RoleTitle: " "})

	if merged[RoleBrand] != "Maker" {
		t.Errorf("brand = %q, want %q", merged[RoleBrand], "Maker")
	}
	if merged[RoleSKU] != "Art" {
		t.Errorf("sku = %q, want %q", merged[RoleSKU], "Art")
	}
	if _, ok := merged[RoleTitle]; ok {
		t.Error("blank override should be dropped")
	}
	if base[RoleSKU] != "Code" {
		t.Error("Merge must not modify the receiver")
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole(" Price "); err != nil || r != RolePrice {
		t.Errorf("ParseRole(Price) = %q, %v", r, err)
	}
	if _, err := ParseRole("colour"); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("ParseRole(colour) error = %v, want ErrUnknownRole", err)
	}
}

// ========================================
// Value Tests
// ========================================

func TestColumnMap_Value(t *testing.T) {
	m, err := Infer([]string{"Name", "Price"}, nil)
	if err != nil {
		t.Fatalf("Infer() unexpected error: %v", err)
	}
	row := table.Row{"Name": "  Soap ", "Price": "1,20"}

	if got := m.Value(row, RoleTitle); got != "Soap" {
		t.Errorf("Value(title) = %q, want %q", got, "Soap")
	}
	if got := m.Value(row, RoleBrand); got != "" {
		t.Errorf("Value(brand) = %q, want empty", got)
	}
}
