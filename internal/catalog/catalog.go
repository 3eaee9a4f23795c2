package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/benvon/problem-dashboard/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed companies.yaml
var defaultCatalog []byte

// Duration labels offered for every company
const (
	DurationThirtyDays  = "30 Days"
	DurationThreeMonths = "3 Months"
	DurationSixMonths   = "6 Months"
	DurationAll         = "All"
)

// fileNames maps a duration label to the CSV file holding that window
var fileNames = map[string]string{
	DurationThirtyDays:  "1. Thirty Days.csv",
	DurationThreeMonths: "2. Three Months.csv",
	DurationSixMonths:   "3. Six Months.csv",
	DurationAll:         "5. All.csv",
}

// FileName returns the CSV file name for a duration label, or "" when the label is unknown
func FileName(duration string) string {
	return fileNames[duration]
}

// IsDuration reports whether label is one of the known duration labels
func IsDuration(label string) bool {
	_, ok := fileNames[label]
	return ok
}

type catalogFile struct {
	DefaultDurations []string             `yaml:"defaultDurations"`
	Companies        []models.CompanyData `yaml:"companies"`
}

// Catalog is the static list of selectable companies
type Catalog struct {
	companies []models.CompanyData
	index     map[string]int
}

// Default returns the catalog compiled into the binary
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a YAML file. An empty path selects the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read companies file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog. Companies without their own durations get the
// file-level defaults; duplicate names keep their first occurrence.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode companies yaml: %w", err)
	}

	c := &Catalog{index: make(map[string]int)}
	for _, company := range f.Companies {
		name := strings.TrimSpace(company.Name)
		if name == "" {
			continue
		}
		if _, dup := c.index[name]; dup {
			continue
		}
		durations := company.Durations
		if len(durations) == 0 {
			durations = f.DefaultDurations
		}
		for _, d := range durations {
			if !IsDuration(d) {
				return nil, fmt.Errorf("company %q: unknown duration %q", name, d)
			}
		}
		c.index[name] = len(c.companies)
		c.companies = append(c.companies, models.CompanyData{
			Name:      name,
			Durations: append([]string(nil), durations...),
		})
	}
	if len(c.companies) == 0 {
		return nil, fmt.Errorf("companies catalog is empty")
	}
	return c, nil
}

// Companies returns a copy of all catalog entries in display order
func (c *Catalog) Companies() []models.CompanyData {
	out := make([]models.CompanyData, len(c.companies))
	for i, company := range c.companies {
		out[i] = models.CompanyData{
			Name:      company.Name,
			Durations: append([]string(nil), company.Durations...),
		}
	}
	return out
}

// Names returns the company names in display order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.companies))
	for i, company := range c.companies {
		names[i] = company.Name
	}
	return names
}

// Has reports whether company is in the catalog
func (c *Catalog) Has(company string) bool {
	_, ok := c.index[company]
	return ok
}

// Durations returns the durations available for company, empty when the company is unknown
func (c *Catalog) Durations(company string) []string {
	i, ok := c.index[company]
	if !ok {
		return []string{}
	}
	return append([]string(nil), c.companies[i].Durations...)
}
