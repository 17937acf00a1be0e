package testutil

import (
	"context"

	pdfDomain "github.com/netspire/billing/internal/domain/pdf"
	"github.com/netspire/billing/internal/pdf"
)

var _ pdf.Generator = (*FakePDFGenerator)(nil)

// FakePDFGenerator implements pdf.Generator without shelling out to typst.
// Set Err to simulate a rendering failure.
type FakePDFGenerator struct {
	Err      error
	Rendered int
	LastData *pdfDomain.InvoiceData
}

func NewFakePDFGenerator() *FakePDFGenerator {
	return &FakePDFGenerator{}
}

func (g *FakePDFGenerator) RenderInvoicePdf(ctx context.Context, data *pdfDomain.InvoiceData) ([]byte, error) {
	g.LastData = data
	if g.Err != nil {
		return nil, g.Err
	}
	g.Rendered++
	return []byte("%PDF-1.4 fake"), nil
}
