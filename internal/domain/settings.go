package domain

import "time"

// SettingsID is the key of the single admin_settings row.
const SettingsID = "admin"

// AdminSettings holds the payee UPI id and QR code shown on the payment page.
type AdminSettings struct {
	SettingsID string    `json:"-" dynamodbav:"settings_id"`
	UPIID      string    `json:"upiId" dynamodbav:"upi_id"`
	QRCodeURL  string    `json:"qrCode" dynamodbav:"qr_code_url"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}
