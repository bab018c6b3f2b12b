// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package logging

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

func TestErrKeyConstant(t *testing.T) {
	if ErrKey != "error" {
		t.Errorf("expected ErrKey to be 'error', got %q", ErrKey)
	}
}

func TestAppendCtx(t *testing.T) {
	attr := slog.String("key1", "value1")
	ctx := AppendCtx(context.TODO(), attr)

	if ctx == nil {
		t.Fatal("expected non-nil context")
	}

	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		if len(attrs) != 1 {
			t.Errorf("expected 1 attribute, got %d", len(attrs))
		}
		if attrs[0].Key != "key1" {
			t.Errorf("expected key 'key1', got %q", attrs[0].Key)
		}
		if attrs[0].Value.String() != "value1" {
			t.Errorf("expected value 'value1', got %q", attrs[0].Value.String())
		}
	} else {
		t.Error("expected slog attributes in context")
	}
}

func TestAppendCtx_WithParent(t *testing.T) {
	parentCtx := context.Background()
	attr1 := slog.String("parent_key", "parent_value")
	parentCtx = AppendCtx(parentCtx, attr1)

	attr2 := slog.String("child_key", "child_value")
	childCtx := AppendCtx(parentCtx, attr2)

	if attrs, ok := childCtx.Value(slogFields).([]slog.Attr); ok {
		if len(attrs) != 2 {
			t.Errorf("expected 2 attributes, got %d", len(attrs))
		}
		if attrs[0].Key != "parent_key" {
			t.Errorf("expected first key 'parent_key', got %q", attrs[0].Key)
		}
		if attrs[1].Key != "child_key" {
			t.Errorf("expected second key 'child_key', got %q", attrs[1].Key)
		}
	} else {
		t.Error("expected slog attributes in context")
	}
}

func TestAppendCtx_NilParent(t *testing.T) {
	//nolint:staticcheck // passing nil on purpose
	ctx := AppendCtx(nil, slog.String("key", "value"))
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); !ok || len(attrs) != 1 {
		t.Error("expected one attribute in context built from nil parent")
	}
}

func TestInitStructureLogConfig_LevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_ADD_SOURCE", "false")

	h := InitStructureLogConfig()
	if h == nil {
		t.Fatal("expected non-nil handler")
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("expected warn level to be enabled")
	}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info level to be disabled when LOG_LEVEL=warn")
	}

	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("LOG_ADD_SOURCE")
}

func TestPriorityCritical(t *testing.T) {
	attr := PriorityCritical()
	if attr.Key != "priority" {
		t.Errorf("expected key 'priority', got %q", attr.Key)
	}
	if attr.Value.String() != "critical" {
		t.Errorf("expected value 'critical', got %q", attr.Value.String())
	}
}
