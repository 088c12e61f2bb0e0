package restaurant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())

	var customers []Customer
	require.NoError(t, store.Load(customersFile, &customers))
	assert.Empty(t, customers)
}

func TestStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "nested")) // Save creates the directory

	saved := []Table{{ID: "t1", Capacity: 2, Status: "available"}}
	require.NoError(t, store.Save(tablesFile, saved))

	var loaded []Table
	require.NoError(t, store.Load(tablesFile, &loaded))
	assert.Equal(t, saved, loaded)
}

func TestStore_Seed(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.Seed())

	for _, name := range []string{customersFile, tablesFile, menuFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	// Transactional collections start empty, on first access.
	_, err := os.Stat(filepath.Join(dir, ordersFile))
	assert.True(t, os.IsNotExist(err))

	var customers []Customer
	require.NoError(t, store.Load(customersFile, &customers))
	require.Len(t, customers, 2)
	assert.Equal(t, "c1", customers[0].ID)

	t.Run("seed does not overwrite", func(t *testing.T) {
		customers[0].TotalVisits = 42
		require.NoError(t, store.Save(customersFile, customers))

		require.NoError(t, store.Seed())

		var reloaded []Customer
		require.NoError(t, store.Load(customersFile, &reloaded))
		assert.Equal(t, 42, reloaded[0].TotalVisits)
	})
}
