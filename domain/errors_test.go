package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/xerrors"
)

func TestRepositoryError(t *testing.T) {
	driverErr := errors.New("connection refused")
	err := xerrors.Errorf("failed to load auction: %w", NewRepositoryError("auctions.FindOne", driverErr))

	assert.True(t, errors.Is(err, ErrRepositoryUnavailable))
	assert.True(t, errors.Is(err, driverErr))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "auctions.FindOne")
	assert.Nil(t, NewRepositoryError("noop", nil))
}
