// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Setenv(`BRIDGESIM_FRAME_INTERVAL`, `1ms`)
	t.Setenv(`BRIDGESIM_METRICS`, `true`)
	t.Setenv(`BRIDGESIM_LOG_LEVEL`, `debug`)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{filepath.Join(`testdata`, `rotate.yaml`)}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, `scenario "rotate": 13 callbacks`)
	assert.Contains(t, out, `SurfaceCreated`)
	assert.Contains(t, out, `SurfaceResized`)
	assert.Contains(t, out, `ApplicationShutdown`)
	assert.Contains(t, out, `surfacebridge_workers_running 0`)
	assert.Equal(t, 1, strings.Count(out, `: ApplicationShutdown#`))

	logs := stderr.String()
	assert.Contains(t, logs, `replaying scenario`)
	assert.Contains(t, logs, `worker started`)
	assert.Contains(t, logs, `lifecycle hook`)
}

func TestRun_usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `usage`)
}

func TestRun_badConfig(t *testing.T) {
	t.Setenv(`BRIDGESIM_LOG_LEVEL`, `loud`)
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{`x.yaml`}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `failed to load config`)
}

func TestRun_missingScenario(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), []string{filepath.Join(t.TempDir(), `nope.yaml`)}, &stdout, &stderr))
	assert.Empty(t, stdout.String())
}

func TestLogLevel_Decode(t *testing.T) {
	for value, want := range map[string]logiface.Level{
		`disabled`: logiface.LevelDisabled,
		`crit`:     logiface.LevelCritical,
		`err`:      logiface.LevelError,
		`error`:    logiface.LevelError,
		`warn`:     logiface.LevelWarning,
		`warning`:  logiface.LevelWarning,
		`info`:     logiface.LevelInformational,
		`trace`:    logiface.LevelTrace,
	} {
		var x logLevel
		require.NoError(t, x.Decode(value), value)
		assert.Equal(t, want, x.Level, value)
	}
	var x logLevel
	assert.Error(t, x.Decode(`INFO`))
}
