package viewmodel

import "github.com/boddenberg/budgetwise-bfa-go/internal/domain"

// CategoryMeta is how a category is presented.
type CategoryMeta struct {
	Category domain.Category `json:"category"`
	Label    string          `json:"label"`
	Color    string          `json:"color"` // hex, e.g. #16A34A
	Icon     string          `json:"icon"`
}

const defaultColor = "#6B7280"

var categoryMeta = map[domain.Category]CategoryMeta{
	domain.CategoryGroceries:     {Color: "#16A34A", Icon: "shopping-cart"},
	domain.CategoryTransport:     {Color: "#2563EB", Icon: "car"},
	domain.CategoryUtilities:     {Color: "#CA8A04", Icon: "lightbulb"},
	domain.CategoryHealth:        {Color: "#EA580C", Icon: "heart-plus"},
	domain.CategoryEntertainment: {Color: "#9333EA", Icon: "clapperboard"},
	domain.CategoryDiningOut:     {Color: "#DC2626", Icon: "utensils"},
	domain.CategoryShopping:      {Color: "#00ACC1", Icon: "shirt"},
	domain.CategoryRent:          {Color: "#4F46E5", Icon: "home"},
	domain.CategoryUncategorized: {Color: defaultColor, Icon: "help-circle"},
}

// MetaFor returns display metadata, falling back to a neutral grey.
func MetaFor(c domain.Category) CategoryMeta {
	m, ok := categoryMeta[c]
	if !ok {
		m = CategoryMeta{Color: defaultColor, Icon: "circle-dollar-sign"}
	}
	m.Category = c
	m.Label = string(c)
	return m
}

// AllCategories lists metadata for every selectable category in display order.
func AllCategories() []CategoryMeta {
	out := make([]CategoryMeta, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, MetaFor(c))
	}
	return out
}
