package models

import "time"

// X402Version is the protocol version advertised in 402 responses
const X402Version = 1

// PaymentOption describes one accepted way to settle a 402 challenge
type PaymentOption struct {
	Scheme            string                 `json:"scheme"`
	Network           string                 `json:"network"`
	MaxAmountRequired string                 `json:"maxAmountRequired"`
	Resource          string                 `json:"resource"`
	PayTo             string                 `json:"payTo"`
	Description       string                 `json:"description"`
	MimeType          string                 `json:"mimeType"`
	PaymentMethods    []string               `json:"paymentMethods"`
	Extra             map[string]interface{} `json:"extra,omitempty"`
}

// PaymentChallenge is the 402 response body for unpaid requests
type PaymentChallenge struct {
	Error       string          `json:"error"`
	X402Version int             `json:"x402Version"`
	Accepts     []PaymentOption `json:"accepts"`
	Message     string          `json:"message"`
}

// Payment is a parsed X-Payment header
type Payment struct {
	Type      string `json:"type,omitempty"`
	Signature string `json:"signature"`
}

// PaymentRecord is the persisted audit entry for an accepted payment
type PaymentRecord struct {
	Signature  string    `bson:"signature" json:"signature"`
	Resource   string    `bson:"resource" json:"resource"`
	Lamports   string    `bson:"lamports" json:"lamports"`
	ClientIP   string    `bson:"client_ip" json:"clientIP"`
	ReceivedAt time.Time `bson:"received_at" json:"receivedAt"`
}
