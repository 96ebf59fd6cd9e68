package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQLWithoutFilters(t *testing.T) {
	q := New("SELECT a FROM t")

	assert.Equal(t, "SELECT a FROM t", q.SQL())
	assert.Equal(t, 0, q.FilterCount())
	assert.Empty(t, q.Args())
}

func TestWhereAppendsAndRenumbers(t *testing.T) {
	q := New("SELECT a FROM t").
		Where("city = ?", "Vijayawada").
		Where("type = ?", "Express")

	assert.Equal(t, "SELECT a FROM t WHERE city = $1 AND type = $2", q.SQL())
	assert.Equal(t, 2, q.FilterCount())
	assert.Equal(t, []interface{}{"Vijayawada", "Express"}, q.Args())
}

func TestOrderByComesLast(t *testing.T) {
	q := New("SELECT a FROM t").
		Where("city = ?", "Guntur").
		OrderBy("departure_time ASC")

	assert.Equal(t, "SELECT a FROM t WHERE city = $1 ORDER BY departure_time ASC", q.SQL())
}

func TestFilterOrderIsAppendOrder(t *testing.T) {
	q := New("SELECT a FROM t").
		Where("x = ?", 1).
		Where("y = ?", 2).
		Where("z = ?", 3)

	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2 AND z = $3", q.SQL())
	assert.Equal(t, []interface{}{1, 2, 3}, q.Args())
}

func TestMultiValueCondition(t *testing.T) {
	q := New("SELECT a FROM t").
		Where("d BETWEEN ? AND ?", "07:00", "09:00")

	assert.Equal(t, "SELECT a FROM t WHERE d BETWEEN $1 AND $2", q.SQL())
	assert.Equal(t, 1, q.FilterCount())
	assert.Len(t, q.Args(), 2)
}
