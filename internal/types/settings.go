package types

import "strings"

// UserConfig holds the per-run generation settings. It is read-only to the
// derivation engine.
type UserConfig struct {
	StartID        int            `json:"start_id" mapstructure:"start_id"`
	IP             string         `json:"ip" mapstructure:"ip"`
	DeviceName     string         `json:"device_name" mapstructure:"device_name"`
	GroupName      string         `json:"group_name" mapstructure:"group_name"`
	ProtocolFamily ProtocolFamily `json:"protocol_family" mapstructure:"protocol_family"`
	DBNumber       string         `json:"db_number" mapstructure:"db_number"`
	LinkType       LinkType       `json:"link_type" mapstructure:"link_type"`
	LinkComPort    string         `json:"link_com_port" mapstructure:"link_com_port"`
	LinkIP         string         `json:"link_ip" mapstructure:"link_ip"`
	ChannelDriver  string         `json:"channel_driver" mapstructure:"channel_driver"`
	DeviceSeries   string         `json:"device_series" mapstructure:"device_series"`
}

type ProtocolFamily string

const (
	ProtocolS7300  ProtocolFamily = "S7-300"
	ProtocolS71200 ProtocolFamily = "S7-1200"
	ProtocolS71500 ProtocolFamily = "S7-1500"
	ProtocolAB     ProtocolFamily = "AB"
	ProtocolOther  ProtocolFamily = "Other"

	// ProtocolSiemens is the family name older configurations use for every S7 model.
	ProtocolSiemens ProtocolFamily = "SIEMENS"
)

// FamilyClass groups protocol families that share addressing rules.
type FamilyClass string

const (
	ClassS7    FamilyClass = "s7"
	ClassAB    FamilyClass = "ab"
	ClassOther FamilyClass = "other"
)

func (p ProtocolFamily) Class() FamilyClass {
	switch strings.ToUpper(strings.TrimSpace(string(p))) {
	case "S7-300", "S7-1200", "S7-1500", "SIEMENS":
		return ClassS7
	case "AB":
		return ClassAB
	default:
		return ClassOther
	}
}

type LinkType string

const (
	LinkCOM      LinkType = "COM"
	LinkEthernet LinkType = "Ethernet"
	LinkOther    LinkType = "Other"

	linkEthernetLocal = "以太网"
)

// Normalize maps aliases onto COM, Ethernet or Other.
func (l LinkType) Normalize() LinkType {
	v := strings.TrimSpace(string(l))
	switch {
	case strings.EqualFold(v, string(LinkCOM)):
		return LinkCOM
	case strings.EqualFold(v, string(LinkEthernet)), v == linkEthernetLocal:
		return LinkEthernet
	default:
		return LinkOther
	}
}
