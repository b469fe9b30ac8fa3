package core

import "fmt"

// ValidationError rejects a request payload before any database work.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ProductNotFoundError aborts a sale when a line references a product that
// matches neither an id nor a sku.
type ProductNotFoundError struct {
	Line int
	Ref  string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("line %d: product %q not found", e.Line, e.Ref)
}

// InsufficientStockError aborts a sale when a line asks for more units than
// are on hand at commit time.
type InsufficientStockError struct {
	Line      int
	SKU       string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("line %d: insufficient stock for %s (%s): requested %d, available %d",
		e.Line, e.SKU, e.Name, e.Requested, e.Available)
}
