package tags

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/qsc20001102/KingSCADA-Tag/internal/types"
)

const (
	tagTypeUser     = "用户变量"
	channelEthernet = "以太网"

	fieldBaseOffset      = "起始偏移"
	fieldRelativeAddress = "address"
)

var (
	discScale = types.ScaleBlock{}

	shortScale = types.ScaleBlock{
		MaxRawValue: "32767",
		MinRawValue: "-32767",
		MaxValue:    "32767",
		MinValue:    "-32767",
		ConvertType: "无",
		IsFilter:    "否",
		DeadBand:    "0",
	}

	floatScale = types.ScaleBlock{
		MaxRawValue: "1000000000",
		MinRawValue: "-1000000000",
		MaxValue:    "1000000000",
		MinValue:    "-1000000000",
		ConvertType: "无",
		IsFilter:    "否",
		DeadBand:    "0",
	}
)

// DefaultCollect names the values of types.FixedCollect field by field, with
// TimeAdjustment filled in so Enable and ForceWrite land under their headers.
var DefaultCollect = types.CollectBlock{
	DeviceSeriesType: "0",
	CollectControl:   "否",
	CollectInterval:  "1000",
	CollectOffset:    "0",
	TimeZoneBias:     "0",
	TimeAdjustment:   "0",
	Enable:           "是",
	ForceWrite:       "否",
}

// DefaultHistory is types.FixedHistory without its surplus trailing "0".
var DefaultHistory = types.HistoryBlock{
	HisRecordMode:  "不记录",
	HisDeadBand:    "0",
	HisInterval:    "60",
	TagGroup:       "TEST",
	NamespaceIndex: "0",
	IdentifierType: "0",
	Identifier:     "",
	ValueRank:      "-1",
	QueueSize:      "0",
	DiscardOldest:  "0",
	MonitoringMode: "0",
	TriggerMode:    "0",
	DeadType:       "0",
	DeadValue:      "0",
	UANodePath:     "",
}

type typeRule struct {
	scale        types.ScaleBlock
	itemDataType string
}

var typeRules = map[types.DataKind]typeRule{
	types.KindDisc:  {scale: discScale, itemDataType: "BIT"},
	types.KindShort: {scale: shortScale, itemDataType: "SHORT"},
	types.KindFloat: {scale: floatScale, itemDataType: "FLOAT"},
}

// addressPolicy describes how a protocol family reads the device base offset
// and turns it into an item address.
type addressPolicy struct {
	offset  types.OffsetKind
	regName string
	regType string
	item    func(off types.BaseOffset, tpl types.TemplateRecord, cfg types.UserConfig) (string, error)
}

// Families without an entry get empty ItemName, RegName and RegType.
var addressPolicies = map[types.FamilyClass]addressPolicy{
	types.ClassS7: {
		offset:  types.OffsetNumber,
		regName: "DB",
		regType: "3",
		item:    s7Item,
	},
	types.ClassAB: {
		offset:  types.OffsetText,
		regName: "TAG",
		regType: "0",
		item:    abItem,
	},
}

// s7Item addresses a data block. Bits keep one decimal (byte.bit); words are
// whole byte offsets.
func s7Item(off types.BaseOffset, tpl types.TemplateRecord, cfg types.UserConfig) (string, error) {
	raw := strings.TrimSpace(tpl.RelativeAddress)

	if tpl.DataType.Kind() == types.KindDisc {
		rel, err := parseFinite(raw)
		if err != nil {
			return "", templateNumberError(tpl, err)
		}
		return fmt.Sprintf("DB%s.%s", cfg.DBNumber, strconv.FormatFloat(off.Number+rel, 'f', 1, 64)), nil
	}

	rel, err := strconv.Atoi(raw)
	if err != nil {
		return "", templateNumberError(tpl, err)
	}
	return fmt.Sprintf("DB%s.%s", cfg.DBNumber, strconv.FormatFloat(off.Number+float64(rel), 'f', -1, 64)), nil
}

func abItem(off types.BaseOffset, tpl types.TemplateRecord, _ types.UserConfig) (string, error) {
	return off.Text + "." + tpl.RelativeAddress, nil
}

// ResolveOffset reads a device base offset as the given kind.
func ResolveOffset(dev types.DeviceRecord, kind types.OffsetKind) (types.BaseOffset, error) {
	if kind == types.OffsetText {
		return types.TextOffset(dev.BaseOffset), nil
	}

	v, err := parseFinite(strings.TrimSpace(dev.BaseOffset))
	if err != nil {
		return types.BaseOffset{}, &types.MalformedNumberError{
			Source: "device",
			Line:   dev.Line,
			Field:  fieldBaseOffset,
			Value:  dev.BaseOffset,
			Err:    err,
		}
	}
	return types.NumberOffset(dev.BaseOffset, v), nil
}

var errNotFinite = errors.New("not a finite number")

// parseFinite is strconv.ParseFloat without NaN and infinities.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

func templateNumberError(tpl types.TemplateRecord, err error) error {
	return &types.MalformedNumberError{
		Source: "template",
		Line:   tpl.Line,
		Field:  fieldRelativeAddress,
		Value:  tpl.RelativeAddress,
		Err:    err,
	}
}

func channelName(cfg types.UserConfig) string {
	switch cfg.LinkType.Normalize() {
	case types.LinkCOM:
		return string(types.LinkCOM) + cfg.LinkComPort
	case types.LinkEthernet:
		return channelEthernet + "<" + cfg.LinkIP + ">"
	default:
		return ""
	}
}
