// Package dataset loads the bin list and builds its spatial index.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bin-finder/internal/excel"
	"bin-finder/internal/metrics"
	"bin-finder/internal/models"
	"bin-finder/internal/spatial"
)

var ErrEmptyPath = errors.New("dataset path is empty")

// Dataset is an immutable, loaded bin list.
type Dataset struct {
	Bins  []models.Bin
	Index *spatial.Index
}

// Stats counts bins by whether they can be placed on the map.
type Stats struct {
	Total        int `json:"total"`
	Located      int `json:"located"`
	MissingCoord int `json:"missingCoordinates"`
}

// New indexes bins and records the dataset gauges.
func New(bins []models.Bin) *Dataset {
	d := &Dataset{Bins: bins, Index: spatial.NewIndex(bins)}
	s := d.Stats()
	metrics.BinsLoaded.WithLabelValues("true").Set(float64(s.Located))
	metrics.BinsLoaded.WithLabelValues("false").Set(float64(s.MissingCoord))
	return d
}

func (d *Dataset) Stats() Stats {
	return Stats{
		Total:        len(d.Bins),
		Located:      d.Index.Len(),
		MissingCoord: len(d.Bins) - d.Index.Len(),
	}
}

// Find returns the bin with the given id.
func (d *Dataset) Find(id string) (models.Bin, bool) {
	for _, b := range d.Bins {
		if b.ID == id {
			return b, true
		}
	}
	return models.Bin{}, false
}

// Load reads bins from an .xlsx workbook (sheet may be empty for the first
// sheet) or from JSON.
func Load(path, sheet string) (*Dataset, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	var (
		bins []models.Bin
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		bins, err = loadXLSX(path, sheet)
	default:
		bins, err = loadJSON(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load bins from %s: %w", path, err)
	}
	return New(bins), nil
}

func loadXLSX(path, sheet string) ([]models.Bin, error) {
	f, err := excel.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return excel.ReadBins(f, sheet)
}

func loadJSON(path string) ([]models.Bin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeJSON(data)
}

// DecodeJSON accepts a bare array of bins or an object wrapping one in
// "data".
func DecodeJSON(data []byte) ([]models.Bin, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Data []models.Bin `json:"data"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, err
		}
		return wrapped.Data, nil
	}

	var bins []models.Bin
	if err := json.Unmarshal(data, &bins); err != nil {
		return nil, err
	}
	return bins, nil
}
