package model

import "time"

type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	PriceID     string            `json:"priceId"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Interval    string            `json:"interval"`
}

type Subscription struct {
	ID                string    `json:"id"`
	Status            string    `json:"status"`
	ProductID         string    `json:"productId"`
	ProductName       string    `json:"productName,omitempty"`
	CurrentPeriodEnd  time.Time `json:"currentPeriodEnd"`
	CancelAtPeriodEnd bool      `json:"cancelAtPeriodEnd"`
}
