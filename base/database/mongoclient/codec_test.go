package mongoclient

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type amountDoc struct {
	Amount decimal.Decimal  `bson:"amount"`
	Max    *decimal.Decimal `bson:"max,omitempty"`
}

func TestDecimalCodec(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()

	max := decimal.RequireFromString("310.25")
	raw, err := bson.MarshalWithRegistry(reg, amountDoc{Amount: decimal.RequireFromString("150.5"), Max: &max})
	req.NoError(err)

	val, err := bson.Raw(raw).LookupErr("amount")
	req.NoError(err)
	req.Equal(bsontype.Decimal128, val.Type)

	out := amountDoc{}
	req.NoError(bson.UnmarshalWithRegistry(reg, raw, &out))
	req.True(decimal.RequireFromString("150.5").Equal(out.Amount))
	req.NotNil(out.Max)
	req.True(max.Equal(*out.Max))
}

func TestDecimalCodecLegacyValues(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()

	cases := []bson.M{
		{"amount": "12.5"},
		{"amount": 12.5},
		{"amount": int32(12)},
		{"amount": int64(12)},
	}
	wants := []string{"12.5", "12.5", "12", "12"}

	for i, c := range cases {
		raw, err := bson.Marshal(c)
		req.NoError(err)
		out := amountDoc{}
		req.NoError(bson.UnmarshalWithRegistry(reg, raw, &out))
		req.True(decimal.RequireFromString(wants[i]).Equal(out.Amount), "case %d got %s", i, out.Amount)
	}
}
