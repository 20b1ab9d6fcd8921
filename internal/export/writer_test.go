package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/qsc20001102/KingSCADA-Tag/internal/tags"
	"github.com/qsc20001102/KingSCADA-Tag/internal/types"
)

func sampleTable(t *testing.T) *types.TagTable {
	t.Helper()
	cfg := types.UserConfig{
		StartID:        1,
		IP:             "192.168.0.10",
		DeviceName:     "PLC1",
		GroupName:      "泵房",
		ProtocolFamily: types.ProtocolS71500,
		DBNumber:       "5",
		LinkType:       types.LinkCOM,
		LinkComPort:    "1",
	}
	devices := []types.DeviceRecord{
		{Code: "P1", Description: "1号泵", BaseOffset: "0"},
		{Code: "P2", Description: "2号泵", BaseOffset: "10"},
	}
	templates := []types.TemplateRecord{
		{NameSuffix: "_Run", DescSuffix: "运行", RelativeAddress: "0.0", DataType: types.DataTypeIODisc, AccessMode: "只读"},
		{NameSuffix: "_Speed", DescSuffix: "转速", RelativeAddress: "2", DataType: types.DataTypeIOShort, AccessMode: "读写"},
	}

	table, err := tags.NewBuilder(nil, nil).Build(devices, templates, cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return table
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	if !bytes.HasPrefix(data, utf8BOM) {
		t.Fatal("Output does not start with a UTF-8 BOM")
	}
	reader := csv.NewReader(bytes.NewReader(data[len(utf8BOM):]))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse output: %v", err)
	}
	return records
}

func TestEncodeKingSCADALayout(t *testing.T) {
	table := sampleTable(t)

	var buf bytes.Buffer
	if err := NewWriter(nil, nil).Encode(&buf, table); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if !strings.Contains(buf.String(), "\r\n") {
		t.Error("Expected CRLF line endings")
	}

	records := readCSV(t, buf.Bytes())
	if len(records) != 1+table.Len() {
		t.Fatalf("Expected %d lines, got %d", 1+table.Len(), len(records))
	}
	if !reflect.DeepEqual(records[0], types.TagHeader) {
		t.Errorf("Unexpected header: %v", records[0])
	}
	for i, row := range records[1:] {
		if len(row) != len(types.TagHeader) {
			t.Errorf("Row %d has %d cells", i, len(row))
		}
	}

	row := records[4]
	if row[0] != "4" || row[1] != "P2_Speed" || row[14] != "COM1" || row[25] != "DB5.12" {
		t.Errorf("Unexpected row: %v", row)
	}
}

func TestKingSCADALayoutFixedBlocks(t *testing.T) {
	table := sampleTable(t)
	layout, err := LayoutByName("kingscada")
	if err != nil {
		t.Fatalf("LayoutByName failed: %v", err)
	}

	if !reflect.DeepEqual(layout.Header(), types.TagHeader) {
		t.Errorf("Expected the full header, got %v", layout.Header())
	}

	wantCollect := []string{"0", "否", "1000", "0", "0", "是", "否"}
	wantHistory := []string{"不记录", "0", "60", "TEST", "0", "0", "", "-1", "0", "0", "0", "0", "0", "0", "0", ""}

	for _, rec := range table.Records {
		row := layout.Row(rec, table.Config)
		if len(row) != len(types.TagHeader) {
			t.Fatalf("Expected %d cells, got %d", len(types.TagHeader), len(row))
		}
		if !reflect.DeepEqual(row[18:25], wantCollect) {
			t.Errorf("%s: unexpected collect block %v", rec.TagName, row[18:25])
		}
		if !reflect.DeepEqual(row[30:], wantHistory) {
			t.Errorf("%s: unexpected history block %v", rec.TagName, row[30:])
		}
		if row[29] != rec.ItemAccessMode {
			t.Errorf("%s: expected access mode in cell 29, got %s", rec.TagName, row[29])
		}
	}

	row := layout.Row(table.Records[1], table.Config)
	if row[25] != "DB5.2" || row[26] != "DB" || row[27] != "3" || row[28] != "SHORT" {
		t.Errorf("Unexpected item cells: %v", row[25:29])
	}
}

func TestNamedLayout(t *testing.T) {
	table := sampleTable(t)
	layout, err := LayoutByName("named")
	if err != nil {
		t.Fatalf("LayoutByName failed: %v", err)
	}

	row := layout.Row(table.Records[1], table.Config)
	if !reflect.DeepEqual(row, table.Records[1].Values()) {
		t.Errorf("Expected one cell per field, got %v", row)
	}
	if row[23] != "0" || row[24] != "是" || row[25] != "否" {
		t.Errorf("Expected TimeAdjustment, Enable, ForceWrite under their names, got %v", row[23:26])
	}
	if row[26] != "DB5.2" || row[30] != "读写" {
		t.Errorf("Unexpected item cells: %v", row[26:31])
	}
}

func TestLegacyLayout(t *testing.T) {
	table := sampleTable(t)
	layout, err := LayoutByName("legacy")
	if err != nil {
		t.Fatalf("LayoutByName failed: %v", err)
	}

	header := layout.Header()
	if len(header) != 45 {
		t.Fatalf("Expected 45 header names, got %d", len(header))
	}
	if header[19] != "CollectControlCollectInterval" {
		t.Errorf("Expected fused header at 19, got %s", header[19])
	}

	row := layout.Row(table.Records[1], table.Config)
	if len(row) != 46 {
		t.Fatalf("Expected 46 cells, got %d", len(row))
	}
	if !reflect.DeepEqual(row[18:25], []string{"0", "否", "1000", "0", "0", "是", "否"}) {
		t.Errorf("Unexpected collect block: %v", row[18:25])
	}
	if row[25] != "DB5.2" || row[26] != "DB" || row[27] != "3" || row[28] != "SHORT" {
		t.Errorf("Unexpected item cells: %v", row[25:29])
	}
	if row[29] != "2" {
		t.Errorf("Expected relative address in cell 29, got %s", row[29])
	}
	wantHistory := []string{"不记录", "0", "60", "TEST", "0", "0", "", "-1", "0", "0", "0", "0", "0", "0", "0", ""}
	if !reflect.DeepEqual(row[30:], wantHistory) {
		t.Errorf("Unexpected history block: %v", row[30:])
	}
}

func TestBasicLayout(t *testing.T) {
	table := sampleTable(t)
	layout, err := LayoutByName("basic")
	if err != nil {
		t.Fatalf("LayoutByName failed: %v", err)
	}

	var buf bytes.Buffer
	if err := NewWriter(layout, nil).Encode(&buf, table); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	records := readCSV(t, buf.Bytes())
	want := []string{"P1_Run", "1号泵运行", "DB5.0.0", "IODisc", "只读", "1", "192.168.0.10", "PLC1", "泵房", "S7-1500", "5"}
	if !reflect.DeepEqual(records[1], want) {
		t.Errorf("Expected %v, got %v", want, records[1])
	}
	// word rows keep the derived integer address
	if records[2][2] != "DB5.2" {
		t.Errorf("Expected DB5.2 for the word row, got %s", records[2][2])
	}
}

func TestLayoutByNameUnknown(t *testing.T) {
	if _, err := LayoutByName("xml"); err == nil {
		t.Error("Expected error for unknown layout")
	}
	layout, err := LayoutByName("")
	if err != nil || layout.Name() != LayoutKingSCADA {
		t.Errorf("Expected default layout, got %v, %v", layout, err)
	}
}

func TestWriteFile(t *testing.T) {
	table := sampleTable(t)
	dir := filepath.Join(t.TempDir(), "output", "nested")
	path := filepath.Join(dir, "generated_tags.csv")

	if err := NewWriter(nil, nil).WriteFile(path, table); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if records := readCSV(t, data); len(records) != 1+table.Len() {
		t.Errorf("Expected %d lines, got %d", 1+table.Len(), len(records))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to list output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the output file, found %d entries", len(entries))
	}
}

func TestWriteFileIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")

	writer := NewWriter(nil, nil)
	if err := writer.WriteFile(a, sampleTable(t)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := writer.WriteFile(b, sampleTable(t)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	dataA, _ := os.ReadFile(a)
	dataB, _ := os.ReadFile(b)
	if !bytes.Equal(dataA, dataB) {
		t.Error("Expected byte-identical output for identical input")
	}
}
