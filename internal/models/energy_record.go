package models

import (
	"fmt"
	"regexp"
	"time"
)

// EnergySource identifies where the energy came from
type EnergySource string

const (
	SourceSolar      EnergySource = "Solar"
	SourceWind       EnergySource = "Wind"
	SourceHydro      EnergySource = "Hydro"
	SourceCoal       EnergySource = "Coal"
	SourceNaturalGas EnergySource = "Natural Gas"
)

// EnergyType classifies a source as renewable or not
type EnergyType string

const (
	TypeRenewable    EnergyType = "Renewable"
	TypeNonRenewable EnergyType = "Non-Renewable"
)

// Weather conditions recorded alongside a reading
const (
	WeatherSunny  = "Sunny"
	WeatherCloudy = "Cloudy"
	WeatherRainy  = "Rainy"
	WeatherWindy  = "Windy"
	WeatherSnowy  = "Snowy"
)

// EnergySources lists all recognized sources
var EnergySources = []EnergySource{
	SourceSolar, SourceWind, SourceHydro, SourceCoal, SourceNaturalGas,
}

// WeatherConditions lists all recognized weather values
var WeatherConditions = []string{
	WeatherSunny, WeatherCloudy, WeatherRainy, WeatherWindy, WeatherSnowy,
}

var sourceTypes = map[EnergySource]EnergyType{
	SourceSolar:      TypeRenewable,
	SourceWind:       TypeRenewable,
	SourceHydro:      TypeRenewable,
	SourceCoal:       TypeNonRenewable,
	SourceNaturalGas: TypeNonRenewable,
}

// TypeForSource returns the renewable classification for a source.
// The second return is false for unknown sources.
func TypeForSource(source EnergySource) (EnergyType, bool) {
	t, ok := sourceTypes[source]
	return t, ok
}

// EnergyRecord is a single hour-of-day reading. Dates are stored as
// "YYYY-MM-DD" text so range filters compare lexicographically, which
// matches calendar order. Hour bounds are wall-clock "HH:00:00" strings;
// the last hour of a day ends at "24:00:00" instead of rolling over.
type EnergyRecord struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	UserID         *uint        `gorm:"index" json:"user_id,omitempty"`
	Date           string       `gorm:"size:10;not null;index" json:"date"`
	HourBeginning  string       `gorm:"size:8;not null" json:"hour_beginning"`
	HourEnding     string       `gorm:"size:8;not null" json:"hour_ending"`
	EnergySource   EnergySource `gorm:"size:20;not null;index" json:"energy_source"`
	Type           EnergyType   `gorm:"size:20;not null" json:"type"`
	ConsumptionMWh float64      `gorm:"not null" json:"consumption_mwh"`
	GenerationMWh  float64      `gorm:"not null" json:"generation_mwh"`
	Weather        string       `gorm:"size:20" json:"weather"`
	PricePerMWh    float64      `json:"price_per_mwh"`
	Revenue        float64      `json:"revenue"`
}

// TableName specifies the table name for EnergyRecord model
func (EnergyRecord) TableName() string {
	return "energy_data"
}

var hourPattern = regexp.MustCompile(`^(?:[01][0-9]|2[0-4]):00:00$`)

// ValidDate reports whether s is a real calendar day in "YYYY-MM-DD" form.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ValidHour reports whether s is an on-the-hour wall-clock string between
// "00:00:00" and "24:00:00".
func ValidHour(s string) bool {
	return hourPattern.MatchString(s)
}

// Validate checks the record's field-level invariants. Revenue is
// deliberately not checked against consumption*price: it is reported by
// the producer, not recomputed here.
func (r *EnergyRecord) Validate() error {
	if !ValidDate(r.Date) {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", r.Date)
	}
	if !ValidHour(r.HourBeginning) {
		return fmt.Errorf("invalid hour_beginning %q", r.HourBeginning)
	}
	if !ValidHour(r.HourEnding) {
		return fmt.Errorf("invalid hour_ending %q", r.HourEnding)
	}
	t, ok := TypeForSource(r.EnergySource)
	if !ok {
		return fmt.Errorf("unknown energy source %q", r.EnergySource)
	}
	if r.Type != "" && r.Type != t {
		return fmt.Errorf("type %q does not match source %q", r.Type, r.EnergySource)
	}
	if r.ConsumptionMWh < 0 {
		return fmt.Errorf("consumption_mwh must be >= 0")
	}
	if r.GenerationMWh < 0 {
		return fmt.Errorf("generation_mwh must be >= 0")
	}
	if r.Weather != "" && !validWeather(r.Weather) {
		return fmt.Errorf("unknown weather %q", r.Weather)
	}
	return nil
}

func validWeather(w string) bool {
	for _, c := range WeatherConditions {
		if c == w {
			return true
		}
	}
	return false
}
