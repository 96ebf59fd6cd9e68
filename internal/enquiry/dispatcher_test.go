package enquiry

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus-enquiry-engine/internal/common/logger"
	"bus-enquiry-engine/internal/models"
)

func newMockDispatcher(t *testing.T) (*Dispatcher, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	d := NewDispatcher(Config{
		HomeCity:     "Vijayawada",
		QueryTimeout: time.Second,
	}, db, nil, logger.NewTestLogger(t))
	return d, mock, db
}

func record(module models.ModuleID, params map[string]string) models.IntentRecord {
	return models.NewIntentRecord(module, params)
}

func TestDispatchUnknownModule(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	_, err := d.Dispatch(context.Background(), record("Weather_Enquiry", nil))

	assert.ErrorIs(t, err, ErrUnknownModule)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query may run for an unknown module")
}

func TestDispatchMissingParameter(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	_, err := d.Dispatch(context.Background(), record(models.ModuleNextBus, map[string]string{
		models.ParamSourceCity: "Vijayawada",
	}))

	assert.ErrorIs(t, err, ErrMissingParameter)
	var de *DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, models.ParamDestinationCity, de.Param)
	assert.NoError(t, mock.ExpectationsWereMet(), "parameter checks precede store access")
}

func TestDispatchNoneSentinelCountsAsAbsent(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	_, err := d.Dispatch(context.Background(), record(models.ModuleNextBus, map[string]string{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: models.NoneSentinel,
	}))

	assert.ErrorIs(t, err, ErrMissingParameter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Each module applies its fixed base filters when only the required
// parameters are present; optional filters add exactly one condition each.
func TestBaseFilterCounts(t *testing.T) {
	for id, spec := range newRegistry() {
		if spec.stub {
			continue
		}
		p := params{}
		for _, name := range spec.required {
			p[name] = "10"
		}
		q, _ := spec.build(p)
		assert.Equal(t, spec.baseFilters, q.FilterCount(), "module %s", id)
	}
}

func TestNextBusOptionalFiltersAppend(t *testing.T) {
	base, _ := buildNextBus(params{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	})
	withType, _ := buildNextBus(params{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
		models.ParamBusType:         "Express",
	})

	assert.Equal(t, base.FilterCount()+1, withType.FilterCount())
	assert.Contains(t, withType.SQL(), "b.type = $3")
}

// Sentences come out in departure order even when the driver hands rows back
// in a different order than the statement asked for.
func TestNextBusSentenceOrdering(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	q, _ := buildNextBus(params{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	})
	cols := []string{"schedule_id", "departure_time", "registration", "type", "name", "source_city", "destination_city"}
	mock.ExpectQuery(regexp.QuoteMeta(q.SQL())).
		WithArgs("Vijayawada", "Guntur").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("SCH-2", int64(32400), "AP-07-2222", "Express", "VJA-GNT", "Vijayawada", "Guntur").
			AddRow("SCH-1", int64(27000), "AP-07-1111", "Deluxe", "VJA-GNT", "Vijayawada", "Guntur").
			AddRow("SCH-3", int64(43200), "AP-07-3333", "Express", "VJA-GNT", "Vijayawada", "Guntur"))

	resp, err := d.Dispatch(context.Background(), record(models.ModuleNextBus, map[string]string{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	}))
	require.NoError(t, err)

	assert.Equal(t, 3, resp.RowCount)
	first := strings.Index(resp.Text, "07:30")
	second := strings.Index(resp.Text, "09:00")
	third := strings.Index(resp.Text, "12:00")
	require.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLastBusOrdersLatestFirst(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	q, _ := buildLastBus(params{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	})
	cols := []string{"departure_time", "registration", "type", "name", "source_city", "destination_city"}
	mock.ExpectQuery(regexp.QuoteMeta(q.SQL())).
		WithArgs("Vijayawada", "Guntur").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(27000), "AP-07-1111", "Deluxe", "VJA-GNT", "Vijayawada", "Guntur").
			AddRow(int64(79200), "AP-07-2222", "Express", "VJA-GNT", "Vijayawada", "Guntur"))

	resp, err := d.Dispatch(context.Background(), record(models.ModuleLastBus, map[string]string{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	}))
	require.NoError(t, err)

	assert.Less(t, strings.Index(resp.Text, "22:00"), strings.Index(resp.Text, "07:30"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLastBusIgnoresMalformedTimeBound(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	// The malformed bound is dropped, so the expected SQL carries only the
	// two city filters.
	q, _ := buildLastBus(params{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	})
	cols := []string{"departure_time", "registration", "type", "name", "source_city", "destination_city"}
	mock.ExpectQuery(regexp.QuoteMeta(q.SQL())).
		WithArgs("Vijayawada", "Guntur").
		WillReturnRows(sqlmock.NewRows(cols))

	resp, err := d.Dispatch(context.Background(), record(models.ModuleLastBus, map[string]string{
		models.ParamSourceCity:        "Vijayawada",
		models.ParamDestinationCity:   "Guntur",
		models.ParamLastDepartureTime: "half past nine",
	}))
	require.NoError(t, err)

	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], models.ParamLastDepartureTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLastBusWellFormedTimeBoundFilters(t *testing.T) {
	q, _ := buildLastBus(params{
		models.ParamSourceCity:        "Vijayawada",
		models.ParamDestinationCity:   "Guntur",
		models.ParamLastDepartureTime: "9:30",
	})

	assert.Equal(t, 3, q.FilterCount())
	// Padding is canonicalized before binding.
	assert.Equal(t, []interface{}{"Vijayawada", "Guntur", "09:30"}, q.Args())
}

func TestFareDispatchRendersOneSentencePerRow(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	q, _ := buildFare(params{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	})
	cols := []string{"amount", "currency", "type", "registration", "departure_time", "name", "source_city", "destination_city"}
	mock.ExpectQuery(regexp.QuoteMeta(q.SQL())).
		WithArgs("Vijayawada", "Guntur").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(150), "INR", "Express", "AP-07-1234", int64(27000), "VJA-GNT", "Vijayawada", "Guntur"))

	resp, err := d.Dispatch(context.Background(), record(models.ModuleFare, map[string]string{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	}))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 1, resp.RowCount)
	assert.True(t, resp.Spoken)
	assert.Contains(t, resp.Text, "Vijayawada")
	assert.Contains(t, resp.Text, "Guntur")
	assert.Contains(t, resp.Text, "150")
	assert.Contains(t, resp.Text, "07:30")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// No matching rows is a successful dispatch, not an error, and never trips a
// template binding failure.
func TestDispatchEmptyResult(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	q, _ := buildFare(params{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Ongole",
	})
	cols := []string{"amount", "currency", "type", "registration", "departure_time", "name", "source_city", "destination_city"}
	mock.ExpectQuery(regexp.QuoteMeta(q.SQL())).
		WithArgs("Vijayawada", "Ongole").
		WillReturnRows(sqlmock.NewRows(cols))

	resp, err := d.Dispatch(context.Background(), record(models.ModuleFare, map[string]string{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Ongole",
	}))
	require.NoError(t, err)

	assert.True(t, resp.Empty())
	assert.Empty(t, resp.Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLuggageDispatchEmitsRawPrices(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	q, _ := buildLuggage(params{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
		models.ParamWeight:          "20",
	})
	cols := []string{"source_city", "destination_city", "distance_km", "bus_type", "allowed_weight_kg", "extra_charge_per_kg", "parcel_cost_per_kg"}
	mock.ExpectQuery(regexp.QuoteMeta(q.SQL())).
		WithArgs("Vijayawada", "Guntur").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("Vijayawada", "Guntur", int64(100), "Express", int64(30), int64(5), int64(2)).
			AddRow("Vijayawada", "Guntur", int64(100), "Deluxe", int64(30), int64(5), int64(3)))

	resp, err := d.Dispatch(context.Background(), record(models.ModuleLuggage, map[string]string{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
		models.ParamWeight:          "20",
	}))
	require.NoError(t, err)

	assert.Equal(t, "4000\n6000", resp.Text)
	assert.False(t, resp.Spoken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Policies reach the result set only through the buses scheduled on the
// route, so a bus type with a tariff but no service between the two cities
// never produces a price line.
func TestLuggageQueryScopesPoliciesToScheduledBuses(t *testing.T) {
	q, _ := buildLuggage(params{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	})

	sql := q.SQL()
	assert.Contains(t, sql, "JOIN schedules sc ON r.route_id = sc.route_id")
	assert.Contains(t, sql, "JOIN buses b ON sc.bus_id = b.bus_id")
	assert.Contains(t, sql, "JOIN luggage_policies lp ON b.type = lp.bus_type")
	assert.Equal(t, 2, q.FilterCount())
	assert.Equal(t, []interface{}{"Vijayawada", "Guntur"}, q.Args())
}

func TestSeatAvailabilityOptionalFilterIsBusTypeOnly(t *testing.T) {
	base, _ := buildSeatAvailability(params{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	})
	withExtras, _ := buildSeatAvailability(params{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
		models.ParamBusType:         "Express",
		models.ParamServiceNumber:   "AP-07-1234",
	})

	// Service_Number is not part of this module's contract; only the bus
	// type narrows the match.
	assert.Equal(t, base.FilterCount()+1, withExtras.FilterCount())
	assert.NotContains(t, withExtras.SQL(), "b.registration")
}

func TestLuggageMalformedWeightIsFatal(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	_, err := d.Dispatch(context.Background(), record(models.ModuleLuggage, map[string]string{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
		models.ParamWeight:          "twenty",
	}))

	assert.ErrorIs(t, err, ErrMalformedValue)
	assert.NoError(t, mock.ExpectationsWereMet(), "weight is checked before the query runs")
}

func TestDispatchQueryTimeout(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	q, _ := buildFare(params{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	})
	mock.ExpectQuery(regexp.QuoteMeta(q.SQL())).
		WithArgs("Vijayawada", "Guntur").
		WillReturnError(context.DeadlineExceeded)

	_, err := d.Dispatch(context.Background(), record(models.ModuleFare, map[string]string{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	}))

	assert.ErrorIs(t, err, ErrQueryTimeout)
}

func TestDispatchQueryFailure(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	q, _ := buildFare(params{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	})
	mock.ExpectQuery(regexp.QuoteMeta(q.SQL())).
		WithArgs("Vijayawada", "Guntur").
		WillReturnError(errors.New("connection reset"))

	_, err := d.Dispatch(context.Background(), record(models.ModuleFare, map[string]string{
		models.ParamSourceCity:      "Vijayawada",
		models.ParamDestinationCity: "Guntur",
	}))

	assert.ErrorIs(t, err, ErrQueryExecution)
	// The opaque error never leaks SQL or driver detail to the caller.
	assert.NotContains(t, err.Error(), "connection reset")
}

func TestBusStatusDefaultsSourceToHomeCity(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	q, _ := buildBusStatus(params{models.ParamSourceCity: "Vijayawada"})
	cols := []string{"status", "departure_time", "registration", "name", "source_city", "destination_city"}
	mock.ExpectQuery(regexp.QuoteMeta(q.SQL())).
		WithArgs("Vijayawada").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("On Time", int64(27000), "AP-07-1234", "VJA-GNT", "Vijayawada", "Guntur"))

	resp, err := d.Dispatch(context.Background(), record(models.ModuleBusStatus, nil))
	require.NoError(t, err)

	assert.Equal(t, 1, resp.RowCount)
	assert.Contains(t, resp.Text, "On Time")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpecialServiceAnswersEmptyWithoutQuery(t *testing.T) {
	d, mock, _ := newMockDispatcher(t)

	resp, err := d.Dispatch(context.Background(), record(models.ModuleSpecialService, map[string]string{
		models.ParamOccasion: "Sankranti",
	}))
	require.NoError(t, err)

	assert.True(t, resp.Empty())
	assert.False(t, resp.Spoken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMultiCityViaFilter(t *testing.T) {
	q, _ := buildMultiCity(params{
		models.ParamSourceCity:       "Vijayawada",
		models.ParamDestinationCity:  "Tirupati",
		models.ParamIntermediateCity: "Ongole",
	})

	assert.Equal(t, 3, q.FilterCount())
	assert.Contains(t, q.SQL(), "r.name LIKE $3")
	assert.Equal(t, []interface{}{"Vijayawada", "Tirupati", "%Ongole%"}, q.Args())
}
