package model

import "time"

// Settlement payee kinds and payment modes.
const (
	PaidToWorker = "Worker"
	PaidToShop   = "Shop"
	PaidToVendor = "Vendor"

	ModeCash         = "Cash"
	ModeUPI          = "UPI"
	ModeBankTransfer = "Bank Transfer"
	ModeCheque       = "Cheque"
)

// Settlement is an immutable ledger entry. Recording one increments the
// owning project's currentSpend by Amount in the same transaction.
type Settlement struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"projectId"`
	PaidToType    string    `json:"paidToType"`
	PaidToName    string    `json:"paidToName"`
	Amount        float64   `json:"amount"`
	Mode          string    `json:"mode"`
	Date          string    `json:"date"` // ISO date
	Description   string    `json:"description"`
	ScreenshotURL string    `json:"screenshotUrl,omitempty"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
}
