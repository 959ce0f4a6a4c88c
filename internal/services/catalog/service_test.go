package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/office671/nawader/internal/domain/assistant/models"
)

func TestNewServiceDefaultCatalog(t *testing.T) {
	svc, err := NewService("")
	require.NoError(t, err)

	items := svc.Items()
	require.NotEmpty(t, items)
	for _, item := range items {
		assert.NotEmpty(t, item.ID)
		assert.NotEmpty(t, item.Title)
	}

	item, ok := svc.Get(items[0].ID)
	assert.True(t, ok)
	assert.Equal(t, items[0], item)

	_, ok = svc.Get("missing")
	assert.False(t, ok)
}

func TestNewServiceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"services":[{"id":"1","title":"A","description":"d"}]}`), 0o600))

	svc, err := NewService(path)
	require.NoError(t, err)
	assert.Equal(t, []models.ReferenceItem{{ID: "1", Title: "A", Description: "d"}}, svc.Items())
}

func TestNewServiceRejectsInvalidEntries(t *testing.T) {
	_, err := NewServiceFromItems([]models.ReferenceItem{{ID: "1"}})
	assert.Error(t, err, "title is required")

	_, err = NewServiceFromItems([]models.ReferenceItem{{ID: "1", Title: "A"}, {ID: "1", Title: "B"}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewService(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
