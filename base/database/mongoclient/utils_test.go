package mongoclient

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/goauction/base/ptr"
)

func TestMakeBsonM(t *testing.T) {
	type patch struct {
		Price    *decimal.Decimal `bson:"price,omitempty"`
		Count    *int             `bson:"count,omitempty"`
		EndTime  *time.Time       `bson:"endTime,omitempty"`
		Note     string           `bson:"note,omitempty"`
		Reason   string           `bson:"reason"`
		internal int
	}

	price := decimal.RequireFromString("12.5")
	got, err := MakeBsonM(&patch{
		Price: &price,
		Count: ptr.Int(0),
	})

	assert.NoError(t, err)
	assert.Equal(t, bson.M{
		"price":  price,
		"count":  0,
		"reason": "",
	}, got)
}

func TestMakeBsonMRejectsNonStruct(t *testing.T) {
	_, err := MakeBsonM(42)
	assert.ErrorIs(t, err, ErrNotStruct)

	got, err := MakeBsonM((*struct{})(nil))
	assert.NoError(t, err)
	assert.Empty(t, got)
}
