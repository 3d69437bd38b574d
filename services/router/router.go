package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"medirouter/datasets"
	"medirouter/models"
	"medirouter/services/compare"
	"medirouter/services/ledger"
	"medirouter/services/normalize"
	"medirouter/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// QueryRouter classifies an incoming request and dispatches it to
// exactly one downstream component, then assembles the final response.
type QueryRouter interface {
	Route(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error)
}

// metricSource binds a metric name to the dataset field it is
// normalized from.
type metricSource struct {
	kind  datasets.DatasetKind
	field string
	unit  string
	scale float64
}

var metricSources = map[string]metricSource{
	"price":        {datasets.KindLabTests, "price", "usd", 1},
	"turnaround":   {datasets.KindLabTests, "turnaround_hours", "hours", 1},
	"responseTime": {datasets.KindEmergency, "avg_response_mins", "minutes", 1},
	"ambulances":   {datasets.KindEmergency, "ambulances", "count", 1},
	"capacity":     {datasets.KindHospitals, "beds", "beds", 1},
	"experience":   {datasets.KindDoctors, "experience_years", "years", 1},
}

// DefaultRouter is the production QueryRouter.
type DefaultRouter struct {
	Gateway    datasets.Gateway
	Engine     *compare.Engine
	Ledger     ledger.BookingLedger
	Classifier Classifier
	CtxStore   ContextStore  // optional conversation state
	Cache      *redis.Client // optional comparison result cache
}

const compareCacheTTL = 5 * time.Minute

func (r *DefaultRouter) Route(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	intent, err := r.Classifier.Classify(ctx, req.Text)
	if err != nil {
		return nil, err
	}

	var resp *models.QueryResponse
	switch intent {
	case models.IntentBooking:
		resp, err = r.routeBooking(ctx, req)
	case models.IntentComparison:
		resp, err = r.routeComparison(ctx, req)
	case models.IntentEmergency:
		resp, err = r.routeEmergency(ctx, req)
	case models.IntentDiagnostic:
		resp, err = r.routeDiagnostic(ctx, req)
	default:
		resp, err = r.routeGeneral(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	resp.Intent = intent

	r.saveContext(ctx, req.RequesterID, resp)
	return resp, nil
}

func (r *DefaultRouter) saveContext(ctx context.Context, requesterID string, resp *models.QueryResponse) {
	if r.CtxStore == nil || requesterID == "" {
		return
	}
	rc := &models.RouterContext{LastIntent: resp.Intent}
	if resp.Booking != nil && resp.Booking.Token != nil {
		rc.PendingToken = resp.Booking.Token.Token
		rc.PendingSlot = resp.Booking.Token.SlotID
	}
	if err := r.CtxStore.Set(ctx, requesterID, rc); err != nil {
		utils.GetLogger().Warn("failed to save router context",
			zap.String("requester", requesterID), zap.Error(err))
	}
}

// routeBooking holds and immediately confirms the requested window.
// Booking errors are terminal for the attempt and surface as result
// statuses; they are never retried here.
func (r *DefaultRouter) routeBooking(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	resp := &models.QueryResponse{}
	if req.Booking == nil {
		resp.Booking = &models.BookingResult{Status: models.BookingNotFound}
		resp.Warnings = append(resp.Warnings, "booking request details missing; supply doctor_id and a time window")
		return resp, nil
	}

	b := req.Booking
	requester := b.RequesterID
	if requester == "" {
		requester = req.RequesterID
	}
	ttl := time.Duration(b.TTLSeconds) * time.Second

	token, err := r.Ledger.Hold(ctx, b.DoctorID, b.Start, b.End, requester, ttl)
	if err != nil {
		return bookingOutcome(resp, err)
	}

	result, err := r.Ledger.Confirm(ctx, token.Token)
	if err != nil {
		return bookingOutcome(resp, err)
	}
	result.Token = token
	resp.Booking = result
	return resp, nil
}

func bookingOutcome(resp *models.QueryResponse, err error) (*models.QueryResponse, error) {
	var be *ledger.BookingError
	if !errors.As(err, &be) {
		return nil, err
	}
	resp.Warnings = append(resp.Warnings, be.Message)
	switch be.Code {
	case ledger.CodeConflict:
		resp.Booking = &models.BookingResult{Status: models.BookingConflict}
	case ledger.CodeExpired:
		resp.Booking = &models.BookingResult{Status: models.BookingExpired}
	default:
		resp.Booking = &models.BookingResult{Status: models.BookingNotFound}
	}
	return resp, nil
}

func (r *DefaultRouter) routeComparison(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	resp := &models.QueryResponse{}
	criteria := defaultCriteria(req.Criteria)
	if req.State != "" && criteria.State == "" {
		criteria.State = req.State
	}

	cacheKey := fmt.Sprintf("compare:%s:%s:%d:%v", criteria.State, criteria.Specialty, criteria.Limit, criteria.Weights)
	if cached := r.cachedComparison(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	directory, warnings, err := r.loadDirectory(criteria.State, criteria.Specialty)
	if err != nil {
		return nil, err
	}
	resp.Warnings = append(resp.Warnings, warnings...)

	weighted := make([]string, 0, len(criteria.Weights))
	for metric := range criteria.Weights {
		weighted = append(weighted, metric)
	}
	sort.Strings(weighted)

	var metrics []models.ComparisonMetric
	for _, metric := range weighted {
		source, known := metricSources[metric]
		if !known {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("unknown metric %q ignored", metric))
			continue
		}
		records, err := r.Gateway.Fetch(source.kind, nil)
		if err != nil {
			// Degrade the affected metric, keep the comparison alive.
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("metric %q degraded: %v", metric, err))
			continue
		}
		res := normalize.Normalize(records, models.MetricSpec{
			Metric:      metric,
			SourceField: source.field,
			Scale:       source.scale,
			Unit:        source.unit,
		})
		resp.Warnings = append(resp.Warnings, res.Warnings...)
		metrics = append(metrics, normalize.DropDangling(res.Metrics, directory)...)
	}

	ranked, err := r.Engine.Compare(criteria, metrics)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(directory))
	for _, h := range directory {
		names[h.ID] = h.Name
	}
	for i := range ranked {
		ranked[i].Name = names[ranked[i].HospitalID]
	}
	resp.Ranked = ranked

	r.storeComparison(ctx, cacheKey, resp)
	return resp, nil
}

func (r *DefaultRouter) cachedComparison(ctx context.Context, key string) *models.QueryResponse {
	if r.Cache == nil {
		return nil
	}
	data, err := r.Cache.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	var resp models.QueryResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return nil
	}
	return &resp
}

func (r *DefaultRouter) storeComparison(ctx context.Context, key string, resp *models.QueryResponse) {
	if r.Cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, compareCacheTTL).Err(); err != nil {
		utils.GetLogger().Debug("comparison cache write failed", zap.Error(err))
	}
}

func (r *DefaultRouter) routeEmergency(_ context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	resp := &models.QueryResponse{}
	records, err := r.Gateway.Fetch(datasets.KindEmergency, nil)
	if err != nil {
		return nil, err
	}
	capabilities, warnings := datasets.DecodeEmergency(records)
	resp.Warnings = append(resp.Warnings, warnings...)

	if req.State != "" {
		directory, dirWarnings, err := r.loadDirectory(req.State, "")
		if err != nil {
			// Directory down: serve unfiltered rather than failing.
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("state filter degraded: %v", err))
		} else {
			resp.Warnings = append(resp.Warnings, dirWarnings...)
			inState := make(map[string]struct{}, len(directory))
			for _, h := range directory {
				inState[h.ID] = struct{}{}
			}
			filtered := capabilities[:0]
			for _, c := range capabilities {
				if _, ok := inState[c.HospitalID]; ok {
					filtered = append(filtered, c)
				}
			}
			capabilities = filtered
		}
	}
	resp.Emergency = capabilities
	return resp, nil
}

func (r *DefaultRouter) routeDiagnostic(_ context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	resp := &models.QueryResponse{}
	var filter datasets.Predicate
	if req.HospitalID != "" {
		filter = datasets.ByField("hospital_id", req.HospitalID)
	}
	records, err := r.Gateway.Fetch(datasets.KindLabTests, filter)
	if err != nil {
		return nil, err
	}
	offerings, warnings := datasets.DecodeDiagnostics(records)
	resp.Diagnostics = offerings
	resp.Warnings = append(resp.Warnings, warnings...)
	return resp, nil
}

func (r *DefaultRouter) routeGeneral(_ context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	resp := &models.QueryResponse{}
	hospitals, warnings, err := r.loadDirectory(req.State, "")
	if err != nil {
		return nil, err
	}
	if req.HospitalID != "" {
		filtered := hospitals[:0]
		for _, h := range hospitals {
			if h.ID == req.HospitalID {
				filtered = append(filtered, h)
			}
		}
		hospitals = filtered
	}
	resp.Hospitals = hospitals
	resp.Warnings = append(resp.Warnings, warnings...)
	return resp, nil
}

// loadDirectory fetches and decodes the hospital directory, optionally
// filtered by state and specialty. The directory is the reference for
// dangling-metric checks, so its unavailability is not degradable.
func (r *DefaultRouter) loadDirectory(state, specialty string) ([]models.HospitalRecord, []string, error) {
	var filter datasets.Predicate
	if state != "" {
		filter = datasets.ByField("state", state)
	}
	records, err := r.Gateway.Fetch(datasets.KindHospitals, filter)
	if err != nil {
		return nil, nil, err
	}
	hospitals, warnings := datasets.DecodeHospitals(records)
	if specialty == "" {
		return hospitals, warnings, nil
	}
	filtered := hospitals[:0]
	for _, h := range hospitals {
		for _, s := range h.Specialties {
			if strings.EqualFold(s, specialty) {
				filtered = append(filtered, h)
				break
			}
		}
	}
	return filtered, warnings, nil
}

// defaultCriteria fills in the standard weighting when the request
// carries none: cheaper, faster-responding, higher-capacity hospitals
// rank first.
func defaultCriteria(c *models.Criteria) models.Criteria {
	if c != nil && len(c.Weights) > 0 {
		return *c
	}
	out := models.Criteria{
		Weights: map[string]float64{
			"price":        -1.0,
			"responseTime": -0.5,
			"capacity":     0.3,
		},
	}
	if c != nil {
		out.Specialty = c.Specialty
		out.State = c.State
		out.Limit = c.Limit
	}
	return out
}
