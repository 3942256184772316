// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import "fmt"

// Kind is one of the three catalog entity categories.
type Kind string

const (
	Category      Kind = "category"
	Product       Kind = "product"
	HierarchyEdge Kind = "hierarchy_edge"
)

// Kinds returns every kind in canonical processing order.
func Kinds() []Kind {
	return []Kind{Category, Product, HierarchyEdge}
}

// KeyFields returns the names of the fields that identify a record of this
// kind, in key-part order.
func (k Kind) KeyFields() []string {
	switch k {
	case Category, Product:
		return []string{"id"}
	case HierarchyEdge:
		return []string{"parent_id", "child_id"}
	default:
		return nil
	}
}

// Plural is the collection name used for persisted units.
func (k Kind) Plural() string {
	switch k {
	case Category:
		return "categories"
	case Product:
		return "products"
	case HierarchyEdge:
		return "hierarchy_edges"
	default:
		return string(k) + "s"
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k.KeyFields() != nil
}

// ParseKind accepts a kind name, its plural, or a short alias (cat, prod,
// edge).
func ParseKind(s string) (Kind, error) {
	switch s {
	case "category", "categories", "cat":
		return Category, nil
	case "product", "products", "prod":
		return Product, nil
	case "hierarchy_edge", "hierarchy_edges", "hierarchy", "edge", "edges":
		return HierarchyEdge, nil
	}
	return "", fmt.Errorf("unknown kind: %s", s)
}
