package model

import "time"

// Application is one submitted loan application. Owners holds display names
// for the dashboard; Payload keeps every submitted field verbatim.
type Application struct {
	ID                int64             `json:"id"`
	CreatedAt         time.Time         `json:"created_at"`
	BusinessLegalName string            `json:"business_legal_name"`
	Industry          string            `json:"industry"`
	LoanAmount        float64           `json:"loan_amount"`
	Owners            []string          `json:"owners"`
	Payload           map[string]string `json:"payload"`
	EIN               string            `json:"ein"`
	BusinessPhone     string            `json:"business_phone"`
	CompanyWebsite    string            `json:"company_website"`
}

// ApplicationFile is metadata for one stored upload.
type ApplicationFile struct {
	ID            int64  `json:"id"`
	ApplicationID int64  `json:"-"`
	Filename      string `json:"filename"`
	StoragePath   string `json:"storage_path"`
	SizeBytes     int64  `json:"size_bytes"`
	DocType       string `json:"doc_type"`
	URL           string `json:"url,omitempty"`
}

// Document types accepted by the upload endpoints.
const (
	DocTypeBankStatement = "bank_statement"
	DocTypeVoidedCheck   = "voided_check"
	DocTypeIDDocument    = "id_doc"
)
