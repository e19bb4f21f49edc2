// Package listing defines the data model for one Marketplace vehicle
// submission: the Listing record, the declarative field specifications
// the reconciliation loop works from, the value comparators, and the
// diagnostic snapshot reported for failed records.
//
// listing holds no browser state. Everything here is plain data so the
// poster packages stay testable without a live page.
package listing

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Default field values used when a record omits a key. These mirror the
// single-run defaults of the tool: a Toyota Avanza draft on the
// Indonesian Marketplace form.
const (
	DefaultTargetURL   = "https://www.facebook.com/marketplace/create/vehicle"
	DefaultSellingURL  = "https://www.facebook.com/marketplace/you/selling"
	DefaultVehicleType = "Mobil/Truk"
	DefaultYear        = "2025"
	DefaultMake        = "Toyota"
	DefaultModel       = "Avanza"
	DefaultPrice       = "200000"
	DefaultMileage     = "120000"
	DefaultDescription = "nego tipis km rendah"
	DefaultLocation    = "Bekasi"
)

// Listing is one form submission: the target field values, the page to
// submit them on, and the photo to attach. A Listing is built once per
// record and never mutated; each record gets its own value so state
// cannot leak between submissions.
type Listing struct {
	TargetURL  string
	SellingURL string
	PhotoPath  string

	VehicleType string
	Year        string
	Make        string
	Model       string
	Price       string
	Mileage     string
	Description string
	Location    string
}

// Default returns the built-in single-run Listing. PhotoPath is left
// empty; the caller resolves it against the asset directory.
func Default() Listing {
	return Listing{
		TargetURL:   DefaultTargetURL,
		SellingURL:  DefaultSellingURL,
		VehicleType: DefaultVehicleType,
		Year:        DefaultYear,
		Make:        DefaultMake,
		Model:       DefaultModel,
		Price:       DefaultPrice,
		Mileage:     DefaultMileage,
		Description: DefaultDescription,
		Location:    DefaultLocation,
	}
}

// FromMap builds a Listing by overlaying the record's keys on base.
// Each field accepts the English key plus the Indonesian aliases used
// in existing data files. Empty and whitespace-only values fall through
// to the base value.
func FromMap(record map[string]any, base Listing) Listing {
	l := base
	l.VehicleType = pick(record, []string{"vehicle_type", "jenis_kendaraan"}, base.VehicleType)
	l.Year = pick(record, []string{"year", "tahun"}, base.Year)
	l.Make = pick(record, []string{"make", "merek", "merk", "brand"}, base.Make)
	l.Model = pick(record, []string{"model"}, base.Model)
	l.Price = pick(record, []string{"price", "harga"}, base.Price)
	l.Mileage = pick(record, []string{"mileage", "jarak_tempuh", "jarak"}, base.Mileage)
	l.Description = pick(record, []string{"description", "keterangan"}, base.Description)
	l.Location = pick(record, []string{"location", "lokasi"}, base.Location)
	l.TargetURL = pick(record, []string{"target_url"}, base.TargetURL)
	l.SellingURL = pick(record, []string{"selling_url"}, base.SellingURL)
	l.PhotoPath = pick(record, []string{"photo_path"}, base.PhotoPath)
	return l
}

func pick(record map[string]any, keys []string, fallback string) string {
	for _, key := range keys {
		v, ok := record[key]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprintf("%v", v))
		if s != "" {
			return s
		}
	}
	return fallback
}

// LoadFile reads a JSON data file and returns the raw record maps.
// Accepted shapes: a top-level array of objects, or an object carrying
// a "listings" array, or "listing_data" as either an array or a single
// object. Non-object entries are dropped. A missing file returns an
// empty slice and no error, so the caller can fall back to a single
// default record.
func LoadFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing: read %s: %w", path, err)
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("listing: parse %s: %w", path, err)
	}

	switch v := payload.(type) {
	case []any:
		return onlyObjects(v), nil
	case map[string]any:
		if arr, ok := v["listings"].([]any); ok {
			return onlyObjects(arr), nil
		}
		switch ld := v["listing_data"].(type) {
		case []any:
			return onlyObjects(ld), nil
		case map[string]any:
			return []map[string]any{ld}, nil
		}
	}
	return nil, nil
}

func onlyObjects(items []any) []map[string]any {
	var out []map[string]any
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
