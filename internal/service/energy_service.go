package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/energy-data-api/internal/models"
	"github.com/energy-data-api/internal/repository"
	"github.com/redis/go-redis/v9"
)

// ErrValidation wraps field-level problems with a submitted record or
// filter so the handler can map them to a 400 without inspecting text.
var ErrValidation = errors.New("validation failed")

const (
	summaryCacheKey = "energy:summary_by_source"
	summaryCacheTTL = 60 * time.Second
)

// EnergyStore is the persistence surface EnergyService depends on
type EnergyStore interface {
	Create(record *models.EnergyRecord) error
	ListFiltered(f repository.Filter) ([]models.EnergyRecord, error)
	SummarizeBySource() ([]repository.SourceSummary, error)
}

// RecordPublisher receives every stored record, e.g. the live-feed hub
type RecordPublisher interface {
	Publish(record models.EnergyRecord)
}

// EnergyService orchestrates record creation, listing and filtering
type EnergyService struct {
	records   EnergyStore
	users     UserStore
	cache     *redis.Client
	publisher RecordPublisher
}

// NewEnergyService creates a new EnergyService. cache and publisher may
// be nil; summaries are then computed directly and records are not
// streamed.
func NewEnergyService(records EnergyStore, users UserStore, cache *redis.Client, publisher RecordPublisher) *EnergyService {
	return &EnergyService{
		records:   records,
		users:     users,
		cache:     cache,
		publisher: publisher,
	}
}

// CreateRecordRequest accepts both the minimal {date, source, amount}
// write shape and the full denormalized record. "amount" is shorthand
// for the generated MWh. Either "source" or "energy_source" names the
// energy source.
type CreateRecordRequest struct {
	Date           string   `json:"date" binding:"required"`
	Source         string   `json:"source"`
	EnergySource   string   `json:"energy_source"`
	Amount         *float64 `json:"amount"`
	HourBeginning  string   `json:"hour_beginning"`
	HourEnding     string   `json:"hour_ending"`
	Type           string   `json:"type"`
	ConsumptionMWh float64  `json:"consumption_mwh"`
	GenerationMWh  float64  `json:"generation_mwh"`
	Weather        string   `json:"weather"`
	PricePerMWh    float64  `json:"price_per_mwh"`
	Revenue        float64  `json:"revenue"`
}

// FilterRequest carries the optional list criteria, readable from query
// parameters or a JSON body
type FilterRequest struct {
	StartDate string `json:"start_date" form:"start_date"`
	EndDate   string `json:"end_date" form:"end_date"`
	Source    string `json:"source" form:"source"`
}

// CreateRecord stores a record on behalf of the authenticated subject.
// The subject must still resolve to a stored user; tokens outlive
// accounts only in principle, but the check closes that hole.
func (s *EnergyService) CreateRecord(subject string, req *CreateRecordRequest) (*models.EnergyRecord, error) {
	user, err := s.users.GetByEmail(subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	record, err := buildRecord(req)
	if err != nil {
		return nil, err
	}
	record.UserID = &user.ID

	if err := s.records.Create(record); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(*record)
	}
	return record, nil
}

func buildRecord(req *CreateRecordRequest) (*models.EnergyRecord, error) {
	source := req.EnergySource
	if source == "" {
		source = req.Source
	}
	if source == "" {
		return nil, fmt.Errorf("%w: source is required", ErrValidation)
	}

	recordType, ok := models.TypeForSource(models.EnergySource(source))
	if !ok {
		return nil, fmt.Errorf("%w: unknown energy source %q", ErrValidation, source)
	}

	generation := req.GenerationMWh
	if req.Amount != nil {
		generation = *req.Amount
	}

	// Omitted hour bounds default to the whole-day window
	hourBegin := req.HourBeginning
	hourEnd := req.HourEnding
	if hourBegin == "" && hourEnd == "" {
		hourBegin, hourEnd = "00:00:00", "24:00:00"
	}

	record := &models.EnergyRecord{
		Date:           req.Date,
		HourBeginning:  hourBegin,
		HourEnding:     hourEnd,
		EnergySource:   models.EnergySource(source),
		Type:           recordType,
		ConsumptionMWh: req.ConsumptionMWh,
		GenerationMWh:  generation,
		Weather:        req.Weather,
		PricePerMWh:    req.PricePerMWh,
		Revenue:        req.Revenue,
	}
	if req.Type != "" && models.EnergyType(req.Type) != recordType {
		return nil, fmt.Errorf("%w: type %q does not match source %q", ErrValidation, req.Type, source)
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return record, nil
}

// ListAll returns every stored record
func (s *EnergyService) ListAll() ([]models.EnergyRecord, error) {
	return s.records.ListFiltered(repository.Filter{})
}

// ListFiltered validates the criteria and returns the matching records.
// An empty request matches everything.
func (s *EnergyService) ListFiltered(req *FilterRequest) ([]models.EnergyRecord, error) {
	f, err := normalizeFilter(req)
	if err != nil {
		return nil, err
	}
	return s.records.ListFiltered(f)
}

func normalizeFilter(req *FilterRequest) (repository.Filter, error) {
	var f repository.Filter
	if req.StartDate != "" {
		if !models.ValidDate(req.StartDate) {
			return f, fmt.Errorf("%w: invalid start_date %q, expected YYYY-MM-DD", ErrValidation, req.StartDate)
		}
		f.StartDate = req.StartDate
	}
	if req.EndDate != "" {
		if !models.ValidDate(req.EndDate) {
			return f, fmt.Errorf("%w: invalid end_date %q, expected YYYY-MM-DD", ErrValidation, req.EndDate)
		}
		f.EndDate = req.EndDate
	}
	if req.Source != "" {
		if _, ok := models.TypeForSource(models.EnergySource(req.Source)); !ok {
			return f, fmt.Errorf("%w: unknown energy source %q", ErrValidation, req.Source)
		}
		f.Source = req.Source
	}
	return f, nil
}

// Summary returns per-source aggregates, served from the Redis cache
// when fresh. Cache failures fall through to the database; the cache is
// an optimization, never a source of truth.
func (s *EnergyService) Summary(ctx context.Context) ([]repository.SourceSummary, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, summaryCacheKey).Bytes(); err == nil {
			var summaries []repository.SourceSummary
			if err := json.Unmarshal(cached, &summaries); err == nil {
				return summaries, nil
			}
		}
	}

	summaries, err := s.records.SummarizeBySource()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(summaries); err == nil {
			s.cache.Set(ctx, summaryCacheKey, payload, summaryCacheTTL)
		}
	}
	return summaries, nil
}
