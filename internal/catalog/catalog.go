package catalog

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/viper"

	"github.com/mamadbah2/papertrail/internal/domain/models"
)

// UnknownItemLeadDays is the flat supplier estimate for paper types outside the catalog.
const UnknownItemLeadDays = 14

// ErrInvalidSpec indicates a catalog entry that cannot be sold.
var ErrInvalidSpec = errors.New("invalid paper spec")

var defaultSpecs = []models.PaperSpec{
	{PaperType: "matte_a4", UnitCost: 1.40, ListPrice: 2.40, ReorderThreshold: 120, SupplierLeadDays: 5},
	{PaperType: "glossy_a4", UnitCost: 1.85, ListPrice: 3.10, ReorderThreshold: 100, SupplierLeadDays: 7},
	{PaperType: "cardstock_a3", UnitCost: 2.75, ListPrice: 4.35, ReorderThreshold: 80, SupplierLeadDays: 9},
	{PaperType: "recycled_a4", UnitCost: 1.55, ListPrice: 2.65, ReorderThreshold: 110, SupplierLeadDays: 6},
}

// Catalog is the immutable set of sellable paper types, keyed by paper type.
type Catalog struct {
	specs map[string]models.PaperSpec
	order []string
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultSpecs)
	if err != nil {
		panic(err)
	}
	return c
}

// New validates specs and builds a catalog. Duplicate paper types are rejected.
func New(specs []models.PaperSpec) (*Catalog, error) {
	c := &Catalog{specs: make(map[string]models.PaperSpec, len(specs))}
	for _, spec := range specs {
		if err := validate(spec); err != nil {
			return nil, err
		}
		if _, exists := c.specs[spec.PaperType]; exists {
			return nil, fmt.Errorf("%w: duplicate paper type %q", ErrInvalidSpec, spec.PaperType)
		}
		c.specs[spec.PaperType] = spec
		c.order = append(c.order, spec.PaperType)
	}
	sort.Strings(c.order)
	return c, nil
}

// Load reads a catalog file (yaml, toml or json, picked by extension) holding a
// top-level `papers` list. An empty path yields the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}

	var file struct {
		Papers []models.PaperSpec `mapstructure:"papers"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", path, err)
	}
	if len(file.Papers) == 0 {
		return nil, fmt.Errorf("catalog file %s: no papers defined", path)
	}

	return New(file.Papers)
}

// Lookup returns the spec for paperType.
func (c *Catalog) Lookup(paperType string) (models.PaperSpec, bool) {
	spec, ok := c.specs[paperType]
	return spec, ok
}

// Specs returns every entry ordered by paper type.
func (c *Catalog) Specs() []models.PaperSpec {
	out := make([]models.PaperSpec, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.specs[key])
	}
	return out
}

// DeliveryDate estimates when a supplier shipment of quantity units would arrive.
// Each full 100 units beyond the reorder threshold adds one day of load penalty.
func (c *Catalog) DeliveryDate(paperType string, quantity int, today time.Time) time.Time {
	day := models.DateOnly(today)
	spec, ok := c.specs[paperType]
	if !ok {
		return day.AddDate(0, 0, UnknownItemLeadDays)
	}

	penalty := max(0, quantity-spec.ReorderThreshold) / 100
	return day.AddDate(0, 0, spec.SupplierLeadDays+penalty)
}

func validate(spec models.PaperSpec) error {
	switch {
	case spec.PaperType == "":
		return fmt.Errorf("%w: paper type is required", ErrInvalidSpec)
	case spec.UnitCost < 0 || spec.ListPrice < 0:
		return fmt.Errorf("%w: %s has negative pricing", ErrInvalidSpec, spec.PaperType)
	case spec.ReorderThreshold < 0 || spec.SupplierLeadDays < 0:
		return fmt.Errorf("%w: %s has negative threshold or lead time", ErrInvalidSpec, spec.PaperType)
	}
	return nil
}
