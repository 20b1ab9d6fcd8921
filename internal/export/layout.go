package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qsc20001102/KingSCADA-Tag/internal/types"
)

// Layout projects tag records onto output columns.
type Layout interface {
	Name() string
	Header() []string
	Row(rec types.TagRecord, cfg types.UserConfig) []string
}

const (
	LayoutKingSCADA = "kingscada"
	LayoutNamed     = "named"
	LayoutLegacy    = "legacy"
	LayoutBasic     = "basic"
)

func LayoutByName(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", LayoutKingSCADA:
		return kingSCADALayout{}, nil
	case LayoutNamed:
		return namedLayout{}, nil
	case LayoutLegacy:
		return legacyLayout{}, nil
	case LayoutBasic:
		return basicLayout{}, nil
	default:
		return nil, fmt.Errorf("unknown layout %q (want %s, %s, %s or %s)",
			name, LayoutKingSCADA, LayoutNamed, LayoutLegacy, LayoutBasic)
	}
}

// kingSCADALayout is the import format: the full header with both literal
// blocks spliced at DeviceSeriesType (cell 18) and HisRecordMode (cell 30).
type kingSCADALayout struct{}

func (kingSCADALayout) Name() string { return LayoutKingSCADA }

func (kingSCADALayout) Header() []string {
	return append([]string(nil), types.TagHeader...)
}

func (kingSCADALayout) Row(rec types.TagRecord, _ types.UserConfig) []string {
	return fixedRow(rec, rec.ItemAccessMode)
}

// namedLayout writes one cell per TagRecord field, so every value sits under
// its own header name.
type namedLayout struct{}

func (namedLayout) Name() string { return LayoutNamed }

func (namedLayout) Header() []string {
	return append([]string(nil), types.TagHeader...)
}

func (namedLayout) Row(rec types.TagRecord, _ types.UserConfig) []string {
	return rec.Values()
}

// legacyLayout reproduces files written by the first release byte for byte:
// its header fused CollectControl and CollectInterval, and rows carry the
// template address where ItemAccessMode belongs.
type legacyLayout struct{}

func (legacyLayout) Name() string { return LayoutLegacy }

func (legacyLayout) Header() []string {
	header := make([]string, 0, len(types.TagHeader)-1)
	for i := 0; i < len(types.TagHeader); i++ {
		if types.TagHeader[i] == "CollectControl" && i+1 < len(types.TagHeader) {
			header = append(header, types.TagHeader[i]+types.TagHeader[i+1])
			i++
			continue
		}
		header = append(header, types.TagHeader[i])
	}
	return header
}

func (legacyLayout) Row(rec types.TagRecord, _ types.UserConfig) []string {
	return fixedRow(rec, rec.RelativeAddress)
}

func fixedRow(rec types.TagRecord, access string) []string {
	row := make([]string, 0, len(types.TagHeader))
	row = append(row, strconv.Itoa(rec.TagID), rec.TagName, rec.Description, rec.TagType, rec.TagDataType)
	row = append(row, rec.Scale.Values()...)
	row = append(row, rec.Unit, rec.ChannelName, rec.DeviceName, rec.ChannelDriver, rec.DeviceSeries)
	row = append(row, types.FixedCollect...)
	row = append(row, rec.ItemName, rec.RegName, rec.RegType, rec.ItemDataType, access)
	row = append(row, types.FixedHistory...)
	return row
}

// basicLayout is the short summary table: one row per tag with the run
// settings. Address is the derived ItemName, so S7 word rows read DB5.2 and
// AB rows carry their tag path, where the first summary generator wrote every
// address as a one-decimal float sum.
type basicLayout struct{}

func (basicLayout) Name() string { return LayoutBasic }

func (basicLayout) Header() []string {
	return []string{"TagName", "Description", "Address", "Type", "Access",
		"StartID", "IP", "DeviceName", "GroupName", "Protocol", "DB"}
}

func (basicLayout) Row(rec types.TagRecord, cfg types.UserConfig) []string {
	return []string{
		rec.TagName,
		rec.Description,
		rec.ItemName,
		rec.TagDataType,
		rec.ItemAccessMode,
		strconv.Itoa(cfg.StartID),
		cfg.IP,
		cfg.DeviceName,
		cfg.GroupName,
		string(cfg.ProtocolFamily),
		cfg.DBNumber,
	}
}
