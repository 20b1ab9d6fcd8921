package types

import "strings"

// TemplateRecord is one repeatable point definition, applied to every device.
type TemplateRecord struct {
	NameSuffix      string   `json:"name" yaml:"name"`
	DescSuffix      string   `json:"desc" yaml:"desc"`
	RelativeAddress string   `json:"address" yaml:"address"`
	DataType        DataType `json:"type" yaml:"type"`
	AccessMode      string   `json:"access" yaml:"access"`
	Line            int      `json:"line,omitempty" yaml:"-"`
}

// DataType is the raw type tag of a template row ("IODisc", "IOShort", ...).
// The raw text is exported as TagDataType; Kind classifies it.
type DataType string

const (
	DataTypeIODisc  DataType = "IODisc"
	DataTypeIOShort DataType = "IOShort"
	DataTypeIOFloat DataType = "IOFloat"
)

type DataKind string

const (
	KindDisc    DataKind = "disc"
	KindShort   DataKind = "short"
	KindFloat   DataKind = "float"
	KindUnknown DataKind = "unknown"
)

func (d DataType) Kind() DataKind {
	switch strings.ToLower(strings.TrimSpace(string(d))) {
	case "iodisc", "disc":
		return KindDisc
	case "ioshort", "short":
		return KindShort
	case "iofloat", "float":
		return KindFloat
	default:
		return KindUnknown
	}
}
