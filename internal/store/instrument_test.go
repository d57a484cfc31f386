package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medscanhq/medscan-api/internal/model"
	"github.com/medscanhq/medscan-api/internal/store/sqlite"
)

func TestWithMetricsDelegates(t *testing.T) {
	ctx := context.Background()
	wrapped := WithMetrics("sqlite", sqlite.New(filepath.Join(t.TempDir(), "metrics.db")))

	require.NoError(t, wrapped.Connect(ctx))
	t.Cleanup(func() { _ = wrapped.Close() })
	require.NoError(t, wrapped.CreateSchema(ctx))

	id, err := wrapped.CreatePatient(ctx, &model.Patient{
		Email: "wrapped@example.com",
		Name:  "Wrapped Patient",
	})
	require.NoError(t, err)

	p, err := wrapped.GetPatient(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "wrapped@example.com", p.Email)
	assert.NotNil(t, wrapped.DB())
}
