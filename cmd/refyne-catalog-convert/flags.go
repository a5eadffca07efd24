package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jmylchreest/refyne-catalog/internal/http/handlers"
	"github.com/jmylchreest/refyne-catalog/internal/table"
)

// inputUsage is the -in help text, listing the extensions the parser accepts.
func inputUsage() string {
	return "Input spreadsheet (" + strings.Join(table.SupportedExtensions(), ", ") + ")"
}

// roleMappings collects repeated -map role=Column flags.
type roleMappings []string

func (m *roleMappings) String() string {
	return strings.Join(*m, ",")
}

func (m *roleMappings) Set(v string) error {
	role, col, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(role) == "" || strings.TrimSpace(col) == "" {
		return fmt.Errorf("want role=Column, got %q", v)
	}
	*m = append(*m, v)
	return nil
}

// values renders the mappings as the map_<role> form fields the server accepts.
func (m roleMappings) values() url.Values {
	values := url.Values{}
	for _, v := range m {
		role, col, _ := strings.Cut(v, "=")
		values.Set(handlers.FormMapPrefix+strings.ToLower(strings.TrimSpace(role)), strings.TrimSpace(col))
	}
	return values
}

func setIf(values url.Values, key, value string) {
	if strings.TrimSpace(value) != "" {
		values.Set(key, value)
	}
}
