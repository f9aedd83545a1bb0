package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ValidatorTestSuite struct {
	suite.Suite
}

func (s *ValidatorTestSuite) TestDecimalAmount() {
	type req struct {
		Amount decimal.Decimal `validate:"gt=0"`
		Title  string          `validate:"required"`
	}

	v := NewCustomValidator(validator.New())

	tests := []struct {
		desc   string
		in     req
		expErr bool
	}{
		{
			desc: "positive amount",
			in:   req{Amount: decimal.RequireFromString("150.5"), Title: "lamp"},
		},
		{
			desc:   "zero amount",
			in:     req{Amount: decimal.Zero, Title: "lamp"},
			expErr: true,
		},
		{
			desc:   "negative amount",
			in:     req{Amount: decimal.NewFromInt(-1), Title: "lamp"},
			expErr: true,
		},
		{
			desc:   "missing title",
			in:     req{Amount: decimal.NewFromInt(1)},
			expErr: true,
		},
	}
	for _, t := range tests {
		err := v.Validate(t.in)
		if t.expErr {
			s.Error(err, t.desc)
		} else {
			s.NoError(err, t.desc)
		}
	}
}

func TestValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(ValidatorTestSuite))
}
