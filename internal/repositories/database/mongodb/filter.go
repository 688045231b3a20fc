package mongodb

import (
	"regexp"

	"github.com/SscSPs/money_records_app/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// listSort orders by date descending with _id as the tie-breaker.
var listSort = bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}}

// buildFilter translates a domain filter into a query document. Bounds are inclusive and
// the description match is a literal, case-insensitive substring.
func buildFilter(f domain.TransactionFilter) bson.M {
	filter := bson.M{}

	if f.DateFrom != nil || f.DateTo != nil {
		dateCond := bson.M{}
		if f.DateFrom != nil {
			dateCond["$gte"] = f.DateFrom.UTC()
		}
		if f.DateTo != nil {
			dateCond["$lte"] = f.DateTo.UTC()
		}
		filter["date"] = dateCond
	}

	if f.AmountMin != nil || f.AmountMax != nil {
		amountCond := bson.M{}
		if f.AmountMin != nil {
			amountCond["$gte"] = f.AmountMin.InexactFloat64()
		}
		if f.AmountMax != nil {
			amountCond["$lte"] = f.AmountMax.InexactFloat64()
		}
		filter["amount"] = amountCond
	}

	if f.DescriptionContains != "" {
		filter["description"] = bson.M{
			"$regex":   regexp.QuoteMeta(f.DescriptionContains),
			"$options": "i",
		}
	}

	return filter
}

// findOptions returns the page window for a listing.
func findOptions(page domain.PageRequest) *options.FindOptions {
	return options.Find().
		SetSort(listSort).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size))
}
