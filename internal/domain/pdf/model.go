package pdf

import (
	"encoding/json"
	"time"
)

// InvoiceData is the data model handed to the invoice PDF template
type InvoiceData struct {
	ID             string  `json:"id"`
	InvoiceNumber  string  `json:"invoice_number"`
	InvoiceStatus  string  `json:"invoice_status"`
	IssueDate      Date    `json:"issue_date"`
	DueDate        Date    `json:"due_date"`
	Subtotal       float64 `json:"subtotal"`
	TaxAmount      float64 `json:"tax_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	Total          float64 `json:"total"`
	AmountPaid     float64 `json:"amount_paid"`
	BalanceDue     float64 `json:"balance_due"`
	Notes          string  `json:"notes,omitempty"`
	Terms          string  `json:"terms,omitempty"`

	Company *CompanyInfo `json:"company"`
	BillTo  *BillToInfo  `json:"bill_to"`

	LineItems []LineItemData `json:"line_items"`
}

// CompanyInfo is the issuing company block printed in the header
type CompanyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// BillToInfo is the customer block printed under the header
type BillToInfo struct {
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	BillingAddress string `json:"billing_address,omitempty"`
}

// LineItemData is a single row of the items table
type LineItemData struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// Date marshals as YYYY-MM-DD for the template
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}
