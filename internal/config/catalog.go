package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/office671/nawader/internal/domain/assistant/models"
)

type CatalogConfig struct {
	Services []models.ReferenceItem `json:"services" validate:"dive"`
}

func LoadCatalogConfig(configPath string) (*CatalogConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog config: %w", err)
	}

	return ParseCatalogConfig(data)
}

func ParseCatalogConfig(data []byte) (*CatalogConfig, error) {
	var config CatalogConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse catalog config: %w", err)
	}

	return &config, nil
}
