package domain

// ============================================================
// Categories
// ============================================================

// Category is one of the fixed spending categories a transaction can carry.
type Category string

const (
	CategoryUncategorized Category = "Uncategorized"
	CategoryGroceries     Category = "Groceries"
	CategoryTransport     Category = "Transport"
	CategoryUtilities     Category = "Utilities"
	CategoryRent          Category = "Rent"
	CategoryEntertainment Category = "Entertainment"
	CategoryDiningOut     Category = "Dining Out"
	CategoryShopping      Category = "Shopping"
	CategoryHealth        Category = "Health"
)

// Categories lists every selectable category, in display order.
var Categories = []Category{
	CategoryUncategorized,
	CategoryGroceries,
	CategoryTransport,
	CategoryUtilities,
	CategoryRent,
	CategoryEntertainment,
	CategoryDiningOut,
	CategoryShopping,
	CategoryHealth,
}

// categoryAliases maps labels the backend has been seen to emit onto the fixed set.
var categoryAliases = map[string]Category{
	"Healthcare": CategoryHealth,
}

// Valid reports whether c is a member of the fixed set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory returns the category named s, or a validation error.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if c.Valid() {
		return c, nil
	}
	if alias, ok := categoryAliases[s]; ok {
		return alias, nil
	}
	if s == "" {
		return "", &ErrValidation{Field: "category", Message: "please select a category"}
	}
	return "", &ErrValidation{Field: "category", Message: "unknown category: " + s}
}

// NormalizeCategory maps anything outside the fixed set to Uncategorized.
func NormalizeCategory(s string) Category {
	c, err := ParseCategory(s)
	if err != nil {
		return CategoryUncategorized
	}
	return c
}
