// Package format turns invoice amounts and identities into display strings.
package format

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLanguage is used when the caller passes an empty tag.
var DefaultLanguage = language.Japanese

const fileNamePrefix = "invoice"

// Formatter is safe for concurrent use.
type Formatter struct {
	printer *message.Printer
}

func New(tag language.Tag) *Formatter {
	if tag == language.Und {
		tag = DefaultLanguage
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Amount renders minor units with locale grouping, e.g. 1234567 -> "1,234,567".
func (f *Formatter) Amount(amount int64) string {
	return f.printer.Sprintf("%d", amount)
}

// Rate renders a fractional rate as a percentage with no trailing zeros.
func (f *Formatter) Rate(rate decimal.Decimal) string {
	return rate.Shift(2).String() + "%"
}

// FileName builds a stable, URL safe document name, for example
// "invoice-yamada-taro-2025-12-21-2026-01-20.pdf".
func FileName(salesPersonName, start, end string) string {
	parts := []string{fileNamePrefix}
	if name := slug.Make(strings.TrimSpace(salesPersonName)); name != "" {
		parts = append(parts, name)
	}
	parts = append(parts, start, end)
	return fmt.Sprintf("%s.pdf", strings.Join(parts, "-"))
}
