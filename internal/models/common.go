package models

import "time"

// AuditFields holds standard audit information for stored records.
type AuditFields struct {
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	LastUpdatedAt time.Time `bson:"lastUpdatedAt" json:"lastUpdatedAt"`
}
