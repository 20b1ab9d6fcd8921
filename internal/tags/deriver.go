package tags

import (
	"fmt"
	"strings"

	"github.com/qsc20001102/KingSCADA-Tag/internal/types"
)

// UnknownTypePolicy decides what happens to template rows whose data type is
// not Disc, Short or Float.
type UnknownTypePolicy string

const (
	UnknownAsDisc UnknownTypePolicy = "disc"
	UnknownReject UnknownTypePolicy = "reject"
)

func ParseUnknownTypePolicy(s string) (UnknownTypePolicy, error) {
	switch UnknownTypePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnknownAsDisc:
		return UnknownAsDisc, nil
	case UnknownReject:
		return UnknownReject, nil
	default:
		return "", fmt.Errorf("unknown data type policy %q (want disc or reject)", s)
	}
}

// Deriver turns one (device, template) pair into a tag record.
type Deriver struct {
	unknown UnknownTypePolicy
}

func NewDeriver(unknown UnknownTypePolicy) *Deriver {
	if unknown == "" {
		unknown = UnknownAsDisc
	}
	return &Deriver{unknown: unknown}
}

var defaultDeriver = NewDeriver(UnknownAsDisc)

// Derive uses the default policy (unknown data types fall back to Disc).
func Derive(dev types.DeviceRecord, tpl types.TemplateRecord, cfg types.UserConfig, seq int) (types.TagRecord, error) {
	return defaultDeriver.Derive(dev, tpl, cfg, seq)
}

// Derive is pure: the same inputs always give the same record.
func (d *Deriver) Derive(dev types.DeviceRecord, tpl types.TemplateRecord, cfg types.UserConfig, seq int) (types.TagRecord, error) {
	rule, err := d.typeRule(tpl)
	if err != nil {
		return types.TagRecord{}, err
	}

	rec := types.TagRecord{
		TagID:       cfg.StartID + seq,
		TagName:     dev.Code + tpl.NameSuffix,
		Description: dev.Description + tpl.DescSuffix,
		TagType:     tagTypeUser,
		TagDataType: string(tpl.DataType),
		Scale:       rule.scale,

		ChannelName:   channelName(cfg),
		DeviceName:    cfg.DeviceName,
		ChannelDriver: cfg.ChannelDriver,
		DeviceSeries:  cfg.DeviceSeries,
		Collect:       DefaultCollect,

		ItemDataType:   rule.itemDataType,
		ItemAccessMode: tpl.AccessMode,
		History:        DefaultHistory,

		RelativeAddress: tpl.RelativeAddress,
	}

	policy, ok := addressPolicies[cfg.ProtocolFamily.Class()]
	if !ok {
		return rec, nil
	}

	off, err := ResolveOffset(dev, policy.offset)
	if err != nil {
		return types.TagRecord{}, err
	}

	item, err := policy.item(off, tpl, cfg)
	if err != nil {
		return types.TagRecord{}, err
	}

	rec.ItemName = item
	rec.RegName = policy.regName
	rec.RegType = policy.regType

	return rec, nil
}

func (d *Deriver) typeRule(tpl types.TemplateRecord) (typeRule, error) {
	if rule, ok := typeRules[tpl.DataType.Kind()]; ok {
		return rule, nil
	}
	if d.unknown == UnknownReject {
		return typeRule{}, &types.UnknownDataTypeError{Line: tpl.Line, Value: string(tpl.DataType)}
	}
	return typeRules[types.KindDisc], nil
}
