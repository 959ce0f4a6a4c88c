package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/config"
	"github.com/office671/nawader/internal/domain/assistant/models"
)

//go:embed catalog.json
var defaultCatalog []byte

// Service holds the reference catalog. It is loaded once and never mutated.
type Service struct {
	items []models.ReferenceItem
	mu    sync.RWMutex
}

// NewService loads the catalog from path, or the built-in catalog when path is empty
func NewService(path string) (*Service, error) {
	var (
		cfg *config.CatalogConfig
		err error
	)
	if path == "" {
		cfg, err = config.ParseCatalogConfig(defaultCatalog)
	} else {
		cfg, err = config.LoadCatalogConfig(path)
	}
	if err != nil {
		return nil, err
	}

	return newService(cfg.Services)
}

func NewServiceFromItems(items []models.ReferenceItem) (*Service, error) {
	return newService(items)
}

func newService(items []models.ReferenceItem) (*Service, error) {
	v := validator.New()
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if err := v.Struct(item); err != nil {
			return nil, fmt.Errorf("invalid catalog entry %d: %w", i, err)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	owned := make([]models.ReferenceItem, len(items))
	copy(owned, items)

	log.Info().Int("items", len(owned)).Msg("Reference catalog loaded")
	return &Service{items: owned}, nil
}

// Items returns the catalog. Callers must treat the slice as read-only.
func (s *Service) Items() []models.ReferenceItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items
}

func (s *Service) Get(id string) (models.ReferenceItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.ReferenceItem{}, false
}
