package types

import "strconv"

// TagHeader is the KingSCADA import column order. TagRecord.Values follows it.
var TagHeader = []string{
	"TagID", "TagName", "Description", "TagType", "TagDataType",
	"MaxRawValue", "MinRawValue", "MaxValue", "MinValue", "NonLinearTableName",
	"ConvertType", "IsFilter", "DeadBand", "Unit", "ChannelName",
	"DeviceName", "ChannelDriver", "DeviceSeries", "DeviceSeriesType", "CollectControl",
	"CollectInterval", "CollectOffset", "TimeZoneBias", "TimeAdjustment", "Enable",
	"ForceWrite", "ItemName", "RegName", "RegType", "ItemDataType",
	"ItemAccessMode", "HisRecordMode", "HisDeadBand", "HisInterval", "TagGroup",
	"NamespaceIndex", "IdentifierType", "Identifier", "ValueRank", "QueueSize",
	"DiscardOldest", "MonitoringMode", "TriggerMode", "DeadType", "DeadValue",
	"UANodePath",
}

// Literal blocks every import file carries. FixedCollect starts at
// DeviceSeriesType and FixedHistory at HisRecordMode; both are written
// verbatim, so the cells after DeviceSeriesType do not follow the names above.
var (
	FixedCollect = []string{"0", "否", "1000", "0", "0", "是", "否"}
	FixedHistory = []string{"不记录", "0", "60", "TEST", "0", "0", "", "-1", "0", "0", "0", "0", "0", "0", "0", ""}
)

// ScaleBlock is the data-type dependent block that follows TagDataType.
type ScaleBlock struct {
	MaxRawValue        string
	MinRawValue        string
	MaxValue           string
	MinValue           string
	NonLinearTableName string
	ConvertType        string
	IsFilter           string
	DeadBand           string
}

func (b ScaleBlock) Values() []string {
	return []string{
		b.MaxRawValue, b.MinRawValue, b.MaxValue, b.MinValue,
		b.NonLinearTableName, b.ConvertType, b.IsFilter, b.DeadBand,
	}
}

// CollectBlock covers DeviceSeriesType through ForceWrite.
type CollectBlock struct {
	DeviceSeriesType string
	CollectControl   string
	CollectInterval  string
	CollectOffset    string
	TimeZoneBias     string
	TimeAdjustment   string
	Enable           string
	ForceWrite       string
}

func (b CollectBlock) Values() []string {
	return []string{
		b.DeviceSeriesType, b.CollectControl, b.CollectInterval, b.CollectOffset,
		b.TimeZoneBias, b.TimeAdjustment, b.Enable, b.ForceWrite,
	}
}

// HistoryBlock covers HisRecordMode through UANodePath.
type HistoryBlock struct {
	HisRecordMode  string
	HisDeadBand    string
	HisInterval    string
	TagGroup       string
	NamespaceIndex string
	IdentifierType string
	Identifier     string
	ValueRank      string
	QueueSize      string
	DiscardOldest  string
	MonitoringMode string
	TriggerMode    string
	DeadType       string
	DeadValue      string
	UANodePath     string
}

func (b HistoryBlock) Values() []string {
	return []string{
		b.HisRecordMode, b.HisDeadBand, b.HisInterval, b.TagGroup,
		b.NamespaceIndex, b.IdentifierType, b.Identifier, b.ValueRank,
		b.QueueSize, b.DiscardOldest, b.MonitoringMode, b.TriggerMode,
		b.DeadType, b.DeadValue, b.UANodePath,
	}
}

// TagRecord is one generated tag row.
type TagRecord struct {
	TagID       int
	TagName     string
	Description string
	TagType     string
	TagDataType string
	Scale       ScaleBlock
	Unit        string

	ChannelName   string
	DeviceName    string
	ChannelDriver string
	DeviceSeries  string
	Collect       CollectBlock

	ItemName       string
	RegName        string
	RegType        string
	ItemDataType   string
	ItemAccessMode string
	History        HistoryBlock

	// RelativeAddress is the template address the item was derived from.
	RelativeAddress string
}

// Values returns the record in TagHeader order, one cell per named field.
func (r TagRecord) Values() []string {
	out := make([]string, 0, len(TagHeader))
	out = append(out,
		strconv.Itoa(r.TagID), r.TagName, r.Description, r.TagType, r.TagDataType)
	out = append(out, r.Scale.Values()...)
	out = append(out, r.Unit, r.ChannelName, r.DeviceName, r.ChannelDriver, r.DeviceSeries)
	out = append(out, r.Collect.Values()...)
	out = append(out, r.ItemName, r.RegName, r.RegType, r.ItemDataType, r.ItemAccessMode)
	out = append(out, r.History.Values()...)
	return out
}

// TagTable is the result of one generation call.
type TagTable struct {
	Config  UserConfig
	Records []TagRecord
}

func (t *TagTable) Len() int {
	return len(t.Records)
}

// TagIDRange returns the first and last TagID, or ok=false for an empty table.
func (t *TagTable) TagIDRange() (first, last int, ok bool) {
	if len(t.Records) == 0 {
		return 0, 0, false
	}
	return t.Records[0].TagID, t.Records[len(t.Records)-1].TagID, true
}
