// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool_Run(t *testing.T) {
	tests := []struct {
		name        string
		workerCount int
		functions   []func() error
		wantErr     bool
	}{
		{
			name:        "no functions",
			workerCount: 2,
			functions:   nil,
			wantErr:     false,
		},
		{
			name:        "all succeed",
			workerCount: 2,
			functions: []func() error{
				func() error { return nil },
				func() error { return nil },
				func() error { return nil },
			},
			wantErr: false,
		},
		{
			name:        "one fails",
			workerCount: 2,
			functions: []func() error{
				func() error { return nil },
				func() error { return errors.New("boom") },
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pool := NewWorkerPool(tc.workerCount)
			err := pool.Run(context.Background(), tc.functions...)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWorkerPool_Run_ExecutesAll(t *testing.T) {
	var count atomic.Int32
	fns := make([]func() error, 10)
	for i := range fns {
		fns[i] = func() error {
			count.Add(1)
			return nil
		}
	}

	pool := NewWorkerPool(3)
	err := pool.Run(context.Background(), fns...)
	assert.NoError(t, err)
	assert.Equal(t, int32(10), count.Load())
}

func TestWorkerPool_RunAll_CollectsAllErrors(t *testing.T) {
	pool := NewWorkerPool(2)
	errs := pool.RunAll(context.Background(),
		func() error { return errors.New("first") },
		func() error { return nil },
		func() error { return errors.New("second") },
	)
	assert.Len(t, errs, 2)
}

func TestWorkerPool_RunAll_ContinuesAfterError(t *testing.T) {
	var count atomic.Int32
	pool := NewWorkerPool(1)
	errs := pool.RunAll(context.Background(),
		func() error { count.Add(1); return errors.New("boom") },
		func() error { count.Add(1); return nil },
		func() error { count.Add(1); return nil },
	)
	assert.Len(t, errs, 1)
	assert.Equal(t, int32(3), count.Load())
}

func TestNewWorkerPool_MinimumWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(-5)
	assert.Equal(t, 1, pool.workerCount)
}
