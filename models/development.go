package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// developmentAliases collapses known equivalent spellings of a development
// into one canonical form. Keys and values are already trimmed/lowercased.
var developmentAliases = map[string]string{
	"vdm":           "vista del mar",
	"vista mar":     "vista del mar",
	"sm":            "san miguel residencial",
	"san miguel":    "san miguel residencial",
	"altozano":      "altozano bosques",
	"pto escondido": "puerto escondido marina",
}

// DevelopmentKey is the canonical identity of a sales development. It can
// only be obtained through NormalizeDevelopment, so every config, rule,
// sale and count lookup compares the same canonical form.
type DevelopmentKey struct {
	value string
}

// NormalizeDevelopment canonicalizes a raw development name: trim,
// lowercase, then resolve known aliases.
func NormalizeDevelopment(raw string) DevelopmentKey {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := developmentAliases[key]; ok {
		key = canonical
	}
	return DevelopmentKey{value: key}
}

// String returns the canonical form.
func (d DevelopmentKey) String() string {
	return d.value
}

// IsZero reports whether the key is empty (no development could be resolved).
func (d DevelopmentKey) IsZero() bool {
	return d.value == ""
}

// Value implements driver.Valuer so the key binds directly as a query parameter.
func (d DevelopmentKey) Value() (driver.Value, error) {
	return d.value, nil
}

// Scan implements sql.Scanner. Stored values are canonical already, but the
// scan re-normalizes to guard against rows written before the alias table grew.
func (d *DevelopmentKey) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.value = ""
	case string:
		*d = NormalizeDevelopment(v)
	case []byte:
		*d = NormalizeDevelopment(string(v))
	default:
		return fmt.Errorf("cannot scan %T into DevelopmentKey", src)
	}
	return nil
}

// GormDataType tells GORM how to map the key in migrations.
func (DevelopmentKey) GormDataType() string {
	return "varchar(120)"
}
