package models

import "time"

// Transaction is the stored form of a transaction document. Amounts are BSON doubles.
type Transaction struct {
	ID              string    `bson:"_id" json:"id"`
	Date            time.Time `bson:"date" json:"date"`
	Description     string    `bson:"description" json:"description"`
	Amount          float64   `bson:"amount" json:"amount"`
	Currency        string    `bson:"currency" json:"currency"`
	ConvertedAmount float64   `bson:"convertedAmount" json:"convertedAmount"`
	AuditFields     `bson:",inline"`
}
