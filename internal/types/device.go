package types

// DeviceRecord is one row of the device inventory.
type DeviceRecord struct {
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
	BaseOffset  string `json:"base_offset" yaml:"base_offset"` // raw text, resolved per protocol family
	Line        int    `json:"line,omitempty" yaml:"-"`
}

type OffsetKind int

const (
	OffsetText OffsetKind = iota
	OffsetNumber
)

func (k OffsetKind) String() string {
	if k == OffsetNumber {
		return "number"
	}
	return "text"
}

// BaseOffset is a device base offset after the protocol family decided how
// to read it. Text is always the raw value; Number is only set for OffsetNumber.
type BaseOffset struct {
	Kind   OffsetKind
	Text   string
	Number float64
}

func TextOffset(raw string) BaseOffset {
	return BaseOffset{Kind: OffsetText, Text: raw}
}

func NumberOffset(raw string, v float64) BaseOffset {
	return BaseOffset{Kind: OffsetNumber, Text: raw, Number: v}
}
