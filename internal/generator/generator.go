// Package generator produces the synthetic hourly energy dataset used to
// seed the energy_data table. The distributions are deliberately simple:
// daylight hours favor solar, winter months skew the weather, and price
// rises when consumption outstrips generation.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/energy-data-api/internal/models"
)

var sourceWeightsDay = []float64{0.4, 0.2, 0.1, 0.15, 0.15}
var sourceWeightsNight = []float64{0.05, 0.3, 0.2, 0.25, 0.2}

var weatherWeightsWinter = []float64{0.1, 0.2, 0.3, 0.2, 0.2}
var weatherWeightsOther = []float64{0.3, 0.3, 0.2, 0.15, 0.05}

// Generator builds deterministic mock records from a seeded RNG
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator with the given seed
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns one record per hour for every day in [start, end],
// both inclusive.
func (g *Generator) Generate(start, end time.Time) []models.EnergyRecord {
	var records []models.EnergyRecord
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for hour := 0; hour < 24; hour++ {
			records = append(records, g.record(day, hour))
		}
	}
	return records
}

func (g *Generator) record(day time.Time, hour int) models.EnergyRecord {
	hourBegin := hourString(hour)
	// The last hour of a day ends at "24:00:00", never "00:00:00" of the
	// next day.
	hourEnd := hourString(hour + 1)

	var source models.EnergySource
	if hour >= 6 && hour <= 18 {
		source = g.pickSource(sourceWeightsDay)
	} else {
		source = g.pickSource(sourceWeightsNight)
	}
	energyType, _ := models.TypeForSource(source)

	var weather string
	switch day.Month() {
	case time.December, time.January, time.February:
		weather = g.pickWeather(weatherWeightsWinter)
	default:
		weather = g.pickWeather(weatherWeightsOther)
	}

	consumption := g.uniform(50, 500)
	if hour >= 8 && hour <= 20 {
		consumption *= 1.2
	} else {
		consumption *= 0.8
	}

	var generation float64
	switch {
	case source == models.SourceSolar && weather == models.WeatherSunny && hour >= 6 && hour <= 18:
		generation = g.uniform(300, 600)
	case source == models.SourceWind && weather == models.WeatherWindy:
		generation = g.uniform(200, 500)
	case source == models.SourceHydro:
		generation = g.uniform(100, 400)
	default:
		generation = g.uniform(40, 300)
	}

	price := g.uniform(20, 150)
	if consumption > generation {
		price *= 1.3
	} else {
		price *= 0.9
	}
	revenue := generation * price

	return models.EnergyRecord{
		Date:           day.Format("2006-01-02"),
		HourBeginning:  hourBegin,
		HourEnding:     hourEnd,
		EnergySource:   source,
		Type:           energyType,
		ConsumptionMWh: round2(consumption),
		GenerationMWh:  round2(generation),
		Weather:        weather,
		PricePerMWh:    round2(price),
		Revenue:        round2(revenue),
	}
}

func (g *Generator) pickSource(weights []float64) models.EnergySource {
	return models.EnergySources[g.weightedIndex(weights)]
}

func (g *Generator) pickWeather(weights []float64) string {
	return models.WeatherConditions[g.weightedIndex(weights)]
}

func (g *Generator) weightedIndex(weights []float64) int {
	x := g.rng.Float64()
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if x < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func hourString(hour int) string {
	return fmt.Sprintf("%02d:00:00", hour)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
