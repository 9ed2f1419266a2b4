package bankaccounts

import "time"

// BankAccount is the read-only projection used for payment previews. The
// engine projects a post-payment balance; the actual debit is the external
// ledger's responsibility.
type BankAccount struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	AccountNumber  string    `json:"accountNumber"`
	CurrentBalance float64   `json:"currentBalance"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
