package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_SaveGetDelete(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	rec := &Record{UserID: "u1", Name: "cfg", Status: StatusDraft}
	require.NoError(t, m.SaveConfiguration(ctx, rec))
	require.NotEmpty(t, rec.ID)

	got, err := m.GetConfiguration(ctx, "u1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "cfg", got.Name)

	got.Name = "mutated"
	again, err := m.GetConfiguration(ctx, "u1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "cfg", again.Name, "returned records must be copies")

	require.NoError(t, m.DeleteConfiguration(ctx, "u1", rec.ID))
	_, err = m.GetConfiguration(ctx, "u1", rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMockStore_SaveErr(t *testing.T) {
	m := NewMockStore()
	m.SaveErr = errors.New("disk full")

	err := m.SaveConfiguration(context.Background(), &Record{UserID: "u1"})
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 1, m.SaveCalls)

	list, err := m.ListConfigurations(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMockStore_Update(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	assert.ErrorIs(t, m.UpdateConfiguration(ctx, &Record{ID: "missing", UserID: "u1"}), ErrNotFound)

	rec := &Record{UserID: "u1", Name: "cfg", Status: StatusDraft}
	require.NoError(t, m.SaveConfiguration(ctx, rec))
	rec.Status = StatusDeployed
	require.NoError(t, m.UpdateConfiguration(ctx, rec))
	assert.Equal(t, 2, m.UpdateCalls)

	got, err := m.GetConfiguration(ctx, "u1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDeployed, got.Status)

	m.SaveErr = errors.New("disk full")
	assert.EqualError(t, m.UpdateConfiguration(ctx, rec), "disk full")
}
