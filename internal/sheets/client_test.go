package sheets

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func TestNewClientNotConfigured(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	if _, err := NewClient(ctx, Config{}, logger); err != ErrNotConfigured {
		t.Errorf("expected ErrNotConfigured without spreadsheet, got %v", err)
	}

	if _, err := NewClient(ctx, Config{SpreadsheetID: "sheet-id"}, logger); err != ErrNotConfigured {
		t.Errorf("expected ErrNotConfigured without credentials, got %v", err)
	}
}

func TestConvertRow(t *testing.T) {
	row := []interface{}{"Jane Doe", float64(95), float64(87.5), true, nil}
	got := convertRow(row)
	want := []string{"Jane Doe", "95", "87.5", "true", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("convertRow = %v, want %v", got, want)
	}
}

func TestConvertRowEmpty(t *testing.T) {
	if got := convertRow(nil); len(got) != 0 {
		t.Errorf("expected empty row, got %v", got)
	}
}
