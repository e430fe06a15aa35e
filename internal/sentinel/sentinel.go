// Package sentinel defines the three opaque byte sequences the template
// helpers embed in rendered cell text and the post-processor later
// interprets and erases. Each starts with the same fixed random-looking
// prefix so it is unlikely to collide with ordinary user-authored cell
// content.
package sentinel

const (
	// RemoveRow marks a row for deletion by the post-processor.
	RemoveRow = "e5nbk6zd-44b1-9a71-remove-row"
	// ToNumber marks a cell whose inline-string text must become a
	// numeric <v> value.
	ToNumber = "e5nbk6zd-44b1-9a71-to-number"
	// ToFormula marks a cell whose inline-string text must become an
	// <f> formula.
	ToFormula = "e5nbk6zd-44b1-9a71-to-formula"
)
