// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveProcess(t *testing.T) {
	m := New()

	m.ObserveProcess("dimmer", time.Millisecond, nil)
	m.ObserveProcess("dimmer", time.Millisecond, nil)
	m.ObserveProcess("dimmer", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.processTotal.WithLabelValues("dimmer", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.processTotal.WithLabelValues("dimmer", StatusError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.processDuration))
}

func TestCounters(t *testing.T) {
	m := New()

	m.RulesTriggered("dimmer", "main", 2)
	m.RulesTriggered("dimmer", "main", 0)
	m.RulesTriggered("dimmer", "main", 1)
	m.OutputFallback("dimmer", "power")
	m.SetEnginesLoaded(3)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.rulesTriggered.WithLabelValues("dimmer", "main")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outputFallback.WithLabelValues("dimmer", "power")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.enginesLoaded))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveProcess("dimmer", time.Second, nil)
		m.RulesTriggered("dimmer", "main", 1)
		m.OutputFallback("dimmer", "power")
		m.SetEnginesLoaded(1)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveProcess("dimmer", time.Millisecond, nil)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `fuzzy_engine_process_total{engine="dimmer",status="ok"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
