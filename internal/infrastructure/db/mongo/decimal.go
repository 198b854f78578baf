package mongo

import (
	"math"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toDecimal stores a float as a fixed-point Decimal128 so that money and
// coordinates survive a round trip without binary rounding. Non-finite values
// cannot be represented and are rejected by validation before reaching here.
func toDecimal(f float64) primitive.Decimal128 {
	d, err := primitive.ParseDecimal128(strconv.FormatFloat(f, 'f', -1, 64))
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return d
}

// toFloat reads a numeric field written by this service or imported by other
// tools. Anything that is not a number is returned as NaN so that callers can
// treat it as malformed.
func toFloat(v bson.RawValue) float64 {
	switch v.Type {
	case bsontype.Decimal128:
		f, err := strconv.ParseFloat(v.Decimal128().String(), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case bsontype.Double:
		return v.Double()
	case bsontype.Int32:
		return float64(v.Int32())
	case bsontype.Int64:
		return float64(v.Int64())
	case bsontype.String:
		f, err := strconv.ParseFloat(v.StringValue(), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
