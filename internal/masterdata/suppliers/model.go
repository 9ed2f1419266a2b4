package suppliers

import "time"

// Supplier is the read-only projection the lifecycle engine consumes.
// WalletBalance is the pre-funded credit that can offset an order's payment
// before bank funds are used; debiting it belongs to the external ledger.
type Supplier struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone"`
	WalletBalance float64   `json:"walletBalance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
