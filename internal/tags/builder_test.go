package tags

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/qsc20001102/KingSCADA-Tag/internal/types"
	"go.uber.org/zap"
)

func sampleDevices(n int) []types.DeviceRecord {
	devices := make([]types.DeviceRecord, 0, n)
	for i := 0; i < n; i++ {
		devices = append(devices, types.DeviceRecord{
			Code:        fmt.Sprintf("P%d", i+1),
			Description: fmt.Sprintf("%d号泵", i+1),
			BaseOffset:  fmt.Sprintf("%d", i*20),
			Line:        i + 2,
		})
	}
	return devices
}

func sampleTemplates() []types.TemplateRecord {
	return []types.TemplateRecord{
		{NameSuffix: "_Run", DescSuffix: "运行", RelativeAddress: "0.0", DataType: types.DataTypeIODisc, AccessMode: "只读", Line: 2},
		{NameSuffix: "_Fault", DescSuffix: "故障", RelativeAddress: "0.1", DataType: types.DataTypeIODisc, AccessMode: "只读", Line: 3},
		{NameSuffix: "_Speed", DescSuffix: "转速", RelativeAddress: "2", DataType: types.DataTypeIOShort, AccessMode: "读写", Line: 4},
		{NameSuffix: "_Current", DescSuffix: "电流", RelativeAddress: "4", DataType: types.DataTypeIOFloat, AccessMode: "只读", Line: 5},
	}
}

func TestBuildRowCountAndTagIDs(t *testing.T) {
	builder := NewBuilder(nil, zap.NewNop())
	devices := sampleDevices(3)
	templates := sampleTemplates()

	table, err := builder.Build(devices, templates, s7Config())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if table.Len() != len(devices)*len(templates) {
		t.Fatalf("Expected %d rows, got %d", len(devices)*len(templates), table.Len())
	}

	for i, rec := range table.Records {
		if rec.TagID != 100+i {
			t.Errorf("Row %d: expected TagID %d, got %d", i, 100+i, rec.TagID)
		}
	}

	first, last, ok := table.TagIDRange()
	if !ok || first != 100 || last != 111 {
		t.Errorf("Unexpected TagID range %d-%d (%v)", first, last, ok)
	}
}

func TestBuildOrderIsDeviceMajor(t *testing.T) {
	builder := NewBuilder(nil, nil)

	table, err := builder.Build(sampleDevices(2), sampleTemplates(), s7Config())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := []string{
		"P1_Run", "P1_Fault", "P1_Speed", "P1_Current",
		"P2_Run", "P2_Fault", "P2_Speed", "P2_Current",
	}
	got := make([]string, 0, table.Len())
	for _, rec := range table.Records {
		got = append(got, rec.TagName)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected order %v, got %v", want, got)
	}

	// second device starts at offset 20
	if table.Records[5].ItemName != "DB10.20.1" {
		t.Errorf("Expected DB10.20.1, got %s", table.Records[5].ItemName)
	}
	if table.Records[6].ItemName != "DB10.22" {
		t.Errorf("Expected DB10.22, got %s", table.Records[6].ItemName)
	}
}

func TestBuildEmptyInputs(t *testing.T) {
	builder := NewBuilder(nil, nil)

	tests := []struct {
		name      string
		devices   []types.DeviceRecord
		templates []types.TemplateRecord
		set       string
	}{
		{"no devices", nil, sampleTemplates(), "devices"},
		{"no templates", sampleDevices(1), nil, "templates"},
		{"neither", nil, nil, "devices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := builder.Build(tt.devices, tt.templates, s7Config())
			if table != nil {
				t.Error("Expected no table")
			}
			if !errors.Is(err, types.ErrEmptyInput) {
				t.Fatalf("Expected ErrEmptyInput, got %v", err)
			}
			var emptyErr *types.EmptyInputError
			if !errors.As(err, &emptyErr) || emptyErr.Set != tt.set {
				t.Errorf("Expected empty %s, got %v", tt.set, err)
			}
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	builder := NewBuilder(nil, nil)

	a, err := builder.Build(sampleDevices(4), sampleTemplates(), s7Config())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	b, err := builder.Build(sampleDevices(4), sampleTemplates(), s7Config())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Error("Expected identical tables for identical inputs")
	}
}

func TestBuildAbortsOnMalformedNumber(t *testing.T) {
	builder := NewBuilder(nil, nil)
	devices := sampleDevices(3)
	devices[1].BaseOffset = "abc"

	table, err := builder.Build(devices, sampleTemplates(), s7Config())
	if table != nil {
		t.Error("Expected no partial table")
	}

	var numErr *types.MalformedNumberError
	if !errors.As(err, &numErr) {
		t.Fatalf("Expected MalformedNumberError, got %v", err)
	}
	if numErr.Line != 3 || numErr.Value != "abc" {
		t.Errorf("Unexpected error context: %+v", numErr)
	}
}

func TestBuildABKeepsTextOffsets(t *testing.T) {
	builder := NewBuilder(nil, nil)
	devices := []types.DeviceRecord{{Code: "M1", BaseOffset: "Rack1"}}
	templates := []types.TemplateRecord{{NameSuffix: "_S", RelativeAddress: "N7:0", DataType: types.DataTypeIOShort}}

	table, err := builder.Build(devices, templates, types.UserConfig{StartID: 1, ProtocolFamily: types.ProtocolAB})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := table.Records[0].ItemName; got != "Rack1.N7:0" {
		t.Errorf("Expected Rack1.N7:0, got %s", got)
	}
}
