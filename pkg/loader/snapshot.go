package loader

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/kass/go-rail-geo/pkg/models"
)

// snapshot is the serializable form of a loaded dataset.
type snapshot struct {
	Stations []*models.Station
	Lines    []*models.Line
}

// SaveSnapshot writes the dataset to a binary snapshot file.
func SaveSnapshot(ds *models.Dataset, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("loader: create snapshot: %w", err)
	}
	defer file.Close()

	data := snapshot{Stations: ds.Stations, Lines: ds.Lines}
	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("loader: encode snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a dataset back from a binary snapshot file.
func LoadSnapshot(filename string) (*models.Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loader: open snapshot: %w", err)
	}
	defer file.Close()

	var data snapshot
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("loader: decode snapshot: %w", err)
	}
	return &models.Dataset{Stations: data.Stations, Lines: data.Lines}, nil
}
