// internal/enquiry/dispatcher.go
package enquiry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"bus-enquiry-engine/internal/common/logger"
	"bus-enquiry-engine/internal/common/metrics"
	"bus-enquiry-engine/internal/enquiry/query"
	"bus-enquiry-engine/internal/models"
)

// Config carries the dispatch-level settings: the kiosk's home terminal city
// used as the default source for station-local modules, and the per-query
// deadline.
type Config struct {
	HomeCity     string
	QueryTimeout time.Duration
}

// Response is the outcome of one dispatched enquiry. An empty result is a
// success: Text is empty, RowCount is zero and err is nil.
type Response struct {
	ID       string
	Module   models.ModuleID
	Text     string
	RowCount int
	Warnings []string
	Spoken   bool
	Cached   bool
}

// Empty reports whether the enquiry matched no rows.
func (r *Response) Empty() bool {
	return r.RowCount == 0
}

// Dispatcher routes intent records to their module, runs the composed query
// and renders the localized answer. One dispatcher serves all nine modules.
type Dispatcher struct {
	cfg      Config
	db       *sql.DB
	cache    *Cache // nil disables caching
	registry map[models.ModuleID]*moduleSpec
	log      logger.Logger
}

func NewDispatcher(cfg Config, db *sql.DB, cache *Cache, log logger.Logger) *Dispatcher {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 10 * time.Second
	}
	return &Dispatcher{
		cfg:      cfg,
		db:       db,
		cache:    cache,
		registry: newRegistry(),
		log:      log,
	}
}

// knownParams is the closed set of parameter names copied off an intent
// record during resolution. Unknown extras are ignored, not rejected.
var knownParams = []string{
	models.ParamSourceCity,
	models.ParamDestinationCity,
	models.ParamBusType,
	models.ParamServiceNumber,
	models.ParamBusNumber,
	models.ParamLastDepartureTime,
	models.ParamTimeFrame,
	models.ParamWeight,
	models.ParamIntermediateCity,
	models.ParamOccasion,
}

// Dispatch runs one intent record end to end. Module and parameter checks
// happen before any store I/O; the query runs under the configured deadline.
func (d *Dispatcher) Dispatch(ctx context.Context, rec models.IntentRecord) (*Response, error) {
	id := uuid.NewString()
	log := d.log.WithFields(map[string]interface{}{
		"enquiry_id": id,
		"module":     string(rec.Module()),
	})

	spec, ok := d.registry[rec.Module()]
	if !ok {
		err := newUnknownModuleError(rec.Module())
		metrics.EnquiryFailures.WithLabelValues(string(rec.Module()), err.Code()).Inc()
		log.Warn("unknown module", nil)
		return nil, err
	}

	metrics.EnquiriesTotal.WithLabelValues(string(spec.id)).Inc()
	start := time.Now()
	defer func() {
		metrics.EnquiryDuration.WithLabelValues(string(spec.id)).Observe(time.Since(start).Seconds())
	}()

	resp, err := d.dispatch(ctx, log, spec, rec, id)
	if err != nil {
		metrics.EnquiryFailures.WithLabelValues(string(spec.id), errCode(err)).Inc()
		log.WithError(err).Error("dispatch failed", nil)
		return nil, err
	}

	log.Info("dispatch complete", map[string]interface{}{
		"rows":   resp.RowCount,
		"cached": resp.Cached,
	})
	return resp, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, log logger.Logger, spec *moduleSpec, rec models.IntentRecord, id string) (*Response, error) {
	p, derr := d.resolveParams(spec, rec)
	if derr != nil {
		return nil, derr
	}

	if spec.stub {
		return &Response{ID: id, Module: spec.id}, nil
	}

	key := cacheKey(spec.id, p)
	if d.cache != nil {
		if cached, hit := d.cache.get(ctx, key); hit {
			metrics.CacheHits.WithLabelValues(string(spec.id)).Inc()
			return &Response{
				ID:       id,
				Module:   spec.id,
				Text:     cached.Text,
				RowCount: cached.RowCount,
				Spoken:   cached.Spoken,
				Cached:   true,
			}, nil
		}
	}

	// Weight feeds the price formula, not a filter, so a malformed value is
	// fatal and is caught before the store is touched.
	if spec.price {
		raw, _ := p.get(models.ParamWeight)
		if _, err := parseWeight(raw); err != nil {
			return nil, newMalformedValueError(spec.id, models.ParamWeight, "expected whole kilograms")
		}
	}

	q, warnings := spec.build(p)
	for _, w := range warnings {
		metrics.FiltersIgnored.WithLabelValues(string(spec.id), w.Param).Inc()
		log.Warn("optional filter ignored", map[string]interface{}{
			"param":  w.Param,
			"value":  w.Value,
			"reason": w.Reason,
		})
	}

	rows, err := d.runQuery(ctx, spec, q)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		normalizeRow(row, spec.shape.durations)
	}
	if spec.order != nil {
		sortRows(rows, *spec.order)
	}

	resp := &Response{
		ID:       id,
		Module:   spec.id,
		RowCount: len(rows),
		Warnings: warningStrings(warnings),
		Spoken:   spec.tmpl != nil,
	}

	if spec.price {
		text, derr := d.priceRows(spec, p, rows)
		if derr != nil {
			return nil, derr
		}
		resp.Text = text
	} else if spec.tmpl != nil {
		var b strings.Builder
		for _, row := range rows {
			sentence, err := renderRow(spec.tmpl, spec.shape, row)
			if err != nil {
				return nil, newTemplateBindingError(spec.id, err.Error())
			}
			b.WriteString(sentence)
		}
		resp.Text = b.String()
	}

	if d.cache != nil && !resp.Empty() {
		d.cache.set(ctx, key, &cachedResponse{
			Text:     resp.Text,
			RowCount: resp.RowCount,
			Spoken:   resp.Spoken,
		})
	}
	return resp, nil
}

// resolveParams copies the known parameters off the record, applies the home
// city default where the module's contract allows it, then verifies the
// required set. All of this happens before any store I/O.
func (d *Dispatcher) resolveParams(spec *moduleSpec, rec models.IntentRecord) (params, *DispatchError) {
	p := params{}
	for _, name := range knownParams {
		if v, ok := rec.Param(name); ok {
			p[name] = v
		}
	}

	if spec.sourceDefaultsToHome {
		if _, ok := p.get(models.ParamSourceCity); !ok {
			p[models.ParamSourceCity] = d.cfg.HomeCity
		}
	}

	for _, name := range spec.required {
		if _, ok := p.get(name); !ok {
			return nil, newMissingParameterError(spec.id, name)
		}
	}
	return p, nil
}

func (d *Dispatcher) runQuery(ctx context.Context, spec *moduleSpec, q *query.Query) ([][]interface{}, error) {
	qctx, cancel := context.WithTimeout(ctx, d.cfg.QueryTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(qctx, q.SQL(), q.Args()...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(qctx.Err(), context.DeadlineExceeded) {
			return nil, newQueryTimeoutError(spec.id)
		}
		return nil, newQueryError(spec.id, "execute")
	}
	defer rows.Close()

	width := len(spec.shape.columns)
	var out [][]interface{}
	for rows.Next() {
		vals := make([]interface{}, width)
		ptrs := make([]interface{}, width)
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, newQueryError(spec.id, "scan")
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, newQueryTimeoutError(spec.id)
		}
		return nil, newQueryError(spec.id, "iterate")
	}
	return out, nil
}

// sortRows applies the module-fixed order as a stable sort on the normalized
// order column. The store already orders the result set, but the contract on
// rendered sentence order holds regardless of what the driver hands back.
func sortRows(rows [][]interface{}, ord ordering) {
	sort.SliceStable(rows, func(i, j int) bool {
		a := fmt.Sprint(rows[i][ord.column])
		b := fmt.Sprint(rows[j][ord.column])
		if ord.descending {
			return a > b
		}
		return a < b
	})
}

// priceRows runs the luggage calculator against each matched tariff row and
// emits one raw price per line. Prices are numbers for the caller to speak
// or display; there is no sentence template on this path.
func (d *Dispatcher) priceRows(spec *moduleSpec, p params, rows [][]interface{}) (string, *DispatchError) {
	raw, _ := p.get(models.ParamWeight)
	weight, err := parseWeight(raw)
	if err != nil {
		return "", newMalformedValueError(spec.id, models.ParamWeight, "expected whole kilograms")
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		policy, err := policyFromRow(spec.shape, row)
		if err != nil {
			return "", newMalformedValueError(spec.id, models.ParamWeight, err.Error())
		}
		lines = append(lines, strconv.FormatInt(LuggagePrice(weight, policy), 10))
	}
	return strings.Join(lines, "\n"), nil
}

func policyFromRow(shape rowShape, row []interface{}) (LuggagePolicy, error) {
	var policy LuggagePolicy
	for i, name := range shape.columns {
		var dst *int64
		switch name {
		case "distance_km":
			dst = &policy.DistanceKm
		case "allowed_weight_kg":
			dst = &policy.AllowedWeightKg
		case "extra_charge_per_kg":
			dst = &policy.ExtraChargePerKg
		case "parcel_cost_per_kg":
			dst = &policy.ParcelCostPerKg
		default:
			continue
		}
		n, err := toInt64(row[i])
		if err != nil {
			return LuggagePolicy{}, fmt.Errorf("column %s: %v", name, err)
		}
		*dst = n
	}
	return policy, nil
}

func toInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case int:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	default:
		return 0, fmt.Errorf("not numeric: %T", v)
	}
}

func warningStrings(warnings []warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = fmt.Sprintf("%s=%q ignored: %s", w.Param, w.Value, w.Reason)
	}
	return out
}
