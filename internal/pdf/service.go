package pdf

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/netspire/billing/internal/config"
	"github.com/netspire/billing/internal/domain/pdf"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/typst"
)

const invoiceTemplate = "invoice.typ"

// Generator defines the interface for PDF generation operations
type Generator interface {
	RenderInvoicePdf(ctx context.Context, data *pdf.InvoiceData) ([]byte, error)
}

type service struct {
	typst typst.Compiler
}

// NewGenerator creates a new PDF generator. Returns nil when PDF rendering
// is disabled; callers treat a nil generator as "no attachment".
func NewGenerator(cfg *config.Configuration, compiler typst.Compiler) Generator {
	if !cfg.PDF.Enabled {
		return nil
	}
	return &service{
		typst: compiler,
	}
}

func (s *service) RenderInvoicePdf(ctx context.Context, data *pdf.InvoiceData) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to marshal invoice data").
			Mark(ierr.ErrSystem)
	}

	out, err := s.typst.CompileTemplate(
		invoiceTemplate,
		jsonData,
		typst.WithOutputFile(fmt.Sprintf("invoice-%s.pdf", data.ID)),
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to compile invoice template").
			Mark(ierr.ErrSystem)
	}

	return out, nil
}
