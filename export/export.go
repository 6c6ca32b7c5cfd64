package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"realty-aggregator/models"
)

// Storage writes scraped listings to timestamped JSON and CSV files in the
// output directory, before any persistence or deduplication happens.
type Storage struct {
	outputDir string
}

// NewStorage creates the output directory if needed.
func NewStorage(outputDir string) (*Storage, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create output dir: %w", err)
	}
	return &Storage{outputDir: outputDir}, nil
}

type listingJSON struct {
	ExternalID   string   `json:"external_id"`
	Title        string   `json:"title"`
	Price        int      `json:"price"`
	URL          string   `json:"url"`
	Address      string   `json:"address"`
	District     string   `json:"district,omitempty"`
	Area         float64  `json:"area"`
	Rooms        int      `json:"rooms"`
	PropertyType string   `json:"property_type"`
	Description  string   `json:"description,omitempty"`
	Floor        int      `json:"floor,omitempty"`
	TotalFloors  int      `json:"total_floors,omitempty"`
	Images       []string `json:"images"`
	Source       string   `json:"source"`
	ParsedAt     string   `json:"parsed_at"`
}

// SaveJSON writes the listings as a JSON array and returns the file path.
func (s *Storage) SaveJSON(listings []*models.Listing, filename string) (string, error) {
	path := filepath.Join(s.outputDir, filename)

	out := make([]listingJSON, 0, len(listings))
	for _, l := range listings {
		images := l.Images
		if images == nil {
			images = []string{}
		}
		out = append(out, listingJSON{
			ExternalID:   l.ExternalID,
			Title:        l.Title,
			Price:        l.Price,
			URL:          l.URL,
			Address:      l.Address,
			District:     l.District,
			Area:         l.Area,
			Rooms:        l.Rooms,
			PropertyType: l.PropertyType,
			Description:  l.Description,
			Floor:        l.Floor,
			TotalFloors:  l.TotalFloors,
			Images:       images,
			Source:       l.Source,
			ParsedAt:     l.ParsedAt.Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("export: write %q: %w", path, err)
	}
	return path, nil
}

// SaveCSV writes the listings as CSV and returns the file path. An empty
// slice still produces a file with the header row.
func (s *Storage) SaveCSV(listings []*models.Listing, filename string) (string, error) {
	path := filepath.Join(s.outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.CSVHeader); err != nil {
		return "", fmt.Errorf("export: write header: %w", err)
	}
	for _, l := range listings {
		if err := w.Write(l.CSVRecord()); err != nil {
			return "", fmt.Errorf("export: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("export: flush: %w", err)
	}
	return path, nil
}

// TimestampedName builds "prefix_YYYYMMDD_HHMMSS.ext".
func TimestampedName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), ext)
}
