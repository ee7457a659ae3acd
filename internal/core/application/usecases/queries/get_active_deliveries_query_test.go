package queries_test

import (
	"testing"

	"lastmile/internal/core/application/usecases/queries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetActiveDeliveriesQuery_Valid(t *testing.T) {
	query := queries.NewGetActiveDeliveriesQuery()
	err := query.Validate()
	require.NoError(t, err)
}

func TestGetActiveDeliveriesQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetActiveDeliveriesQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetActiveDeliveriesQueryIsNotConstructed)
}
