package repository

import (
	"github.com/energy-data-api/internal/models"
	"gorm.io/gorm"
)

// Filter holds the optional criteria for listing energy records. Empty
// fields impose no constraint; supplied fields are AND-ed together.
// Dates are inclusive "YYYY-MM-DD" bounds compared lexicographically,
// which is order-equivalent to calendar order for that format.
type Filter struct {
	StartDate string
	EndDate   string
	Source    string
}

// SourceSummary aggregates the records of one energy source
type SourceSummary struct {
	EnergySource   models.EnergySource `json:"energy_source"`
	Type           models.EnergyType   `json:"type"`
	Records        int64               `json:"records"`
	ConsumptionMWh float64             `json:"consumption_mwh"`
	GenerationMWh  float64             `json:"generation_mwh"`
	Revenue        float64             `json:"revenue"`
	AvgPricePerMWh float64             `json:"avg_price_per_mwh"`
}

// EnergyRecordRepository handles energy record data access
type EnergyRecordRepository struct {
	db *gorm.DB
}

// NewEnergyRecordRepository creates a new EnergyRecordRepository
func NewEnergyRecordRepository(db *gorm.DB) *EnergyRecordRepository {
	return &EnergyRecordRepository{db: db}
}

// Create inserts a new energy record
func (r *EnergyRecordRepository) Create(record *models.EnergyRecord) error {
	return r.db.Create(record).Error
}

// CreateBatch inserts records in batches, used by the dataset seeder
func (r *EnergyRecordRepository) CreateBatch(records []models.EnergyRecord, batchSize int) error {
	return r.db.CreateInBatches(records, batchSize).Error
}

// ListAll returns every record in stable order
func (r *EnergyRecordRepository) ListAll() ([]models.EnergyRecord, error) {
	return r.ListFiltered(Filter{})
}

// ListFiltered returns the records matching the filter. An empty filter
// matches everything, so ListFiltered(Filter{}) equals ListAll. Ordering
// is date, hour_beginning, id for determinism.
func (r *EnergyRecordRepository) ListFiltered(f Filter) ([]models.EnergyRecord, error) {
	query := r.db.Model(&models.EnergyRecord{})
	if f.StartDate != "" {
		query = query.Where("date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		query = query.Where("date <= ?", f.EndDate)
	}
	if f.Source != "" {
		query = query.Where("energy_source = ?", f.Source)
	}

	var records []models.EnergyRecord
	result := query.Order("date, hour_beginning, id").Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

// SummarizeBySource aggregates totals per energy source
func (r *EnergyRecordRepository) SummarizeBySource() ([]SourceSummary, error) {
	var summaries []SourceSummary
	result := r.db.Model(&models.EnergyRecord{}).
		Select("energy_source, type, COUNT(*) AS records, " +
			"SUM(consumption_mwh) AS consumption_mwh, " +
			"SUM(generation_mwh) AS generation_mwh, " +
			"SUM(revenue) AS revenue, " +
			"AVG(price_per_mwh) AS avg_price_per_mwh").
		Group("energy_source, type").
		Order("energy_source").
		Scan(&summaries)
	if result.Error != nil {
		return nil, result.Error
	}
	return summaries, nil
}
