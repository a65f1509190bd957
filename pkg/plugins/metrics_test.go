package plugins

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easelhq/pluginman/pkg/host"
)

func TestMetrics_CountsOperations(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.observe(opActivate, resultOK)
	m.observe(opActivate, resultOK)
	m.observe(opInstall, resultRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues(opActivate, resultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues(opInstall, resultRejected)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues(opUninstall, resultError)))
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.observe(opActivate, resultOK)
		m.SetListed(3)
	})
}

func TestMetrics_TracksRegistrySize(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SetListed(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.PluginsListed))

	m.SetListed(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PluginsListed))
}

func TestRegistry_UpdatesListedGaugeOnRefresh(t *testing.T) {
	paths := testPaths(t)
	installFixture(t, paths, "foo")
	installFixture(t, paths, "bar")

	reg := NewRegistry(paths, host.NewMemorySettings(), testLog())
	m := NewMetrics(prometheus.NewRegistry())
	reg.SetMetrics(m)

	require.NoError(t, reg.Refresh())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PluginsListed))
}

func TestLifecycle_RecordsMetrics(t *testing.T) {
	paths := testPaths(t)
	h := host.NewMemoryHost()
	lc := NewLifecycle(paths, h, testLog())

	m := NewMetrics(prometheus.NewRegistry())
	lc.SetMetrics(m)

	installFixture(t, paths, "foo")
	rec, err := NewRecordFromFile(paths.ManifestPath("foo"), paths, h.Settings())
	require.NoError(t, err)

	require.NoError(t, lc.Activate(rec))
	require.NoError(t, lc.Deactivate(rec))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues(opActivate, resultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues(opDeactivate, resultOK)))
}
