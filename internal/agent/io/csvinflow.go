// Package io implements agents that bridge the simulation to external
// time-series data, currently a CSV-driven inflow source.
package io

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"hydromas/internal/bus"
	"hydromas/internal/log"
)

// sample is one (time, value) row of a loaded series.
type sample struct {
	t, v float64
}

// CsvInflowAgent reads a time-series from a CSV file once at
// construction and, on every tick, publishes the most recent sample at
// or before the current time (zero-order hold). It publishes nothing
// before the first sample's time is reached.
//
// Grounded on original_source/core_lib/data_access/csv_inflow_agent.py.
//
// No third-party CSV library appears anywhere in the example pack;
// encoding/csv is used here as a deliberate stdlib choice, not an
// oversight.
type CsvInflowAgent struct {
	id          string
	bus         *bus.Bus
	inflowTopic string
	samples     []sample
}

// NewCsvInflowAgent loads csvFilePath and returns a CsvInflowAgent that
// publishes {"inflow_rate": value} to inflowTopic. timeColumn and
// dataColumn name the CSV header columns to use. A load failure is
// logged and leaves the agent permanently idle rather than returning an
// error, matching the original's never-raise posture for a driving
// agent that the harness cannot meaningfully recover from mid-run.
func NewCsvInflowAgent(id string, b *bus.Bus, csvFilePath, timeColumn, dataColumn, inflowTopic string) *CsvInflowAgent {
	a := &CsvInflowAgent{id: id, bus: b, inflowTopic: inflowTopic}

	samples, err := loadSamples(csvFilePath, timeColumn, dataColumn)
	if err != nil {
		log.GetLogger().WithField("agent", id).WithError(err).Errorf("failed to load CSV inflow data from %q", csvFilePath)
		return a
	}
	a.samples = samples
	return a
}

func loadSamples(path, timeColumn, dataColumn string) ([]sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv file %q is empty", path)
	}

	timeIdx, dataIdx := -1, -1
	for i, h := range rows[0] {
		switch h {
		case timeColumn:
			timeIdx = i
		case dataColumn:
			dataIdx = i
		}
	}
	if timeIdx == -1 || dataIdx == -1 {
		return nil, fmt.Errorf("columns %q/%q not found in %q", timeColumn, dataColumn, path)
	}

	samples := make([]sample, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if timeIdx >= len(row) || dataIdx >= len(row) {
			continue
		}
		t, err := strconv.ParseFloat(row[timeIdx], 64)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(row[dataIdx], 64)
		if err != nil {
			continue
		}
		samples = append(samples, sample{t: t, v: v})
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].t < samples[j].t })
	return samples, nil
}

// Run publishes the most recent sample at or before t, if any.
func (a *CsvInflowAgent) Run(t float64) error {
	if len(a.samples) == 0 {
		return nil
	}

	idx := sort.Search(len(a.samples), func(i int) bool { return a.samples[i].t > t }) - 1
	if idx < 0 {
		return nil
	}

	a.bus.Publish(a.inflowTopic, bus.Message{"inflow_rate": a.samples[idx].v})
	return nil
}
