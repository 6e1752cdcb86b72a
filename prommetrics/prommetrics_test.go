package prommetrics

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrevorS/vptree"
)

func TestCollector_RecordsOperations(t *testing.T) {
	c, err := New(prometheus.NewRegistry(), "test")
	require.NoError(t, err)

	c.RecordBuild(10, 9, time.Millisecond, nil)
	c.RecordBuild(3, 0, time.Millisecond, errors.New("bad point"))
	c.RecordKNN(5, 5, 12, time.Microsecond, nil)
	c.RecordRadius(1.5, 3, 4, time.Microsecond, nil)
	c.RecordRadius(1.5, 0, 0, time.Microsecond, errors.New("bad target"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.operations.WithLabelValues(opBuild)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errors.WithLabelValues(opBuild)))
	assert.Equal(t, 9.0, testutil.ToFloat64(c.nodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues(opKNN)))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.errors.WithLabelValues(opKNN)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.operations.WithLabelValues(opRadius)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errors.WithLabelValues(opRadius)))
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, "dup")
	require.NoError(t, err)

	_, err = New(reg, "dup")
	assert.Error(t, err)
}

func TestCollector_WiredIntoTree(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg, "")
	require.NoError(t, err)

	cfg := vptree.DefaultConfig()
	cfg.Source = rand.NewPCG(1, 1)
	cfg.Metrics = c
	tree, err := vptree.Build([][]float64{{0, 0}, {1, 0}, {1, 1}, {5, 5}}, cfg)
	require.NoError(t, err)

	_, err = tree.KNN([]float64{0, 0}, 2)
	require.NoError(t, err)
	_, err = tree.Radius([]float64{0, 0}, 1.5)
	require.NoError(t, err)
	_, err = tree.KNN([]float64{0}, 2)
	require.Error(t, err)

	assert.Equal(t, 4.0, testutil.ToFloat64(c.nodes))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.operations.WithLabelValues(opKNN)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errors.WithLabelValues(opKNN)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues(opRadius)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "vptree_operations_total")
	assert.Contains(t, names, "vptree_visited_nodes")
}
