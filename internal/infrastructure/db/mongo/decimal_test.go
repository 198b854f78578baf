package mongo

import (
	"math"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/projectwatch/dashboard-api/internal/core/domain"
)

// rawField marshals {v: value} and returns the raw value of v.
func rawField(t *testing.T, value interface{}) bson.RawValue {
	t.Helper()
	b, err := bson.Marshal(bson.M{"v": value})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bson.Raw(b).Lookup("v")
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  float64
	}{
		{"decimal", toDecimal(14.5995), 14.5995},
		{"double", 120.9842, 120.9842},
		{"int32", int32(7), 7},
		{"int64", int64(1500000), 1500000},
		{"numeric string", "121.05", 121.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toFloat(rawField(t, tt.value)); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	for name, value := range map[string]interface{}{
		"text":    "north of the river",
		"boolean": true,
		"null":    nil,
	} {
		if got := toFloat(rawField(t, value)); !math.IsNaN(got) {
			t.Errorf("%s: expected NaN, got %v", name, got)
		}
	}
	if got := toFloat(bson.RawValue{}); !math.IsNaN(got) {
		t.Errorf("missing field: expected NaN, got %v", got)
	}
}

func TestToDecimal_RoundTrip(t *testing.T) {
	for _, f := range []float64{0, 0.1, 2500000.75, -33.8688} {
		d := toDecimal(f)
		if got := toFloat(rawField(t, d)); got != f {
			t.Errorf("round trip of %v gave %v", f, got)
		}
	}
	if rawField(t, toDecimal(1)).Type != bsontype.Decimal128 {
		t.Errorf("expected Decimal128 encoding")
	}
}

func TestProjectQuery(t *testing.T) {
	minCost, maxCost := 100.0, 500.0
	q := projectQuery(domain.ProjectFilter{
		Search:   "a.b",
		Region:   "NCR",
		MinCost:  &minCost,
		MaxCost:  &maxCost,
		Location: "Pasig",
	})

	if q["region"] != "NCR" {
		t.Errorf("expected exact region, got %v", q["region"])
	}
	if _, ok := q["status"]; ok {
		t.Errorf("empty criteria must not be pushed down")
	}
	cost, ok := q["cost"].(bson.M)
	if !ok || cost["$gte"] == nil || cost["$lte"] == nil {
		t.Errorf("expected cost range, got %v", q["cost"])
	}
	or, ok := q["$or"].(bson.A)
	if !ok || len(or) != 5 {
		t.Fatalf("expected search across five fields, got %v", q["$or"])
	}
	re := or[0].(bson.M)["name"].(primitive.Regex)
	if re.Pattern != `a\.b` || re.Options != "i" {
		t.Errorf("search must be a quoted case-insensitive pattern, got %+v", re)
	}

	if len(projectQuery(domain.ProjectFilter{})) != 0 {
		t.Errorf("empty filter must match everything")
	}
}
