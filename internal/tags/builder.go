package tags

import (
	"fmt"

	"github.com/qsc20001102/KingSCADA-Tag/internal/types"
	"go.uber.org/zap"
)

// Builder expands every device against every template row.
type Builder struct {
	deriver *Deriver
	logger  *zap.Logger
}

func NewBuilder(deriver *Deriver, logger *zap.Logger) *Builder {
	if deriver == nil {
		deriver = defaultDeriver
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		deriver: deriver,
		logger:  logger,
	}
}

// Build derives |devices| x |templates| records, devices outer, templates
// inner. The first derivation error aborts the build and no table is returned.
func (b *Builder) Build(
	devices []types.DeviceRecord,
	templates []types.TemplateRecord,
	cfg types.UserConfig,
) (*types.TagTable, error) {
	if len(devices) == 0 {
		return nil, &types.EmptyInputError{Set: "devices"}
	}
	if len(templates) == 0 {
		return nil, &types.EmptyInputError{Set: "templates"}
	}

	b.logger.Info("Building tag table",
		zap.Int("devices", len(devices)),
		zap.Int("templates", len(templates)),
		zap.String("protocol_family", string(cfg.ProtocolFamily)),
		zap.Int("start_id", cfg.StartID))

	table := &types.TagTable{
		Config:  cfg,
		Records: make([]types.TagRecord, 0, len(devices)*len(templates)),
	}

	seq := 0
	for _, dev := range devices {
		b.logger.Debug("Expanding device",
			zap.String("code", dev.Code),
			zap.String("base_offset", dev.BaseOffset))

		for _, tpl := range templates {
			rec, err := b.deriver.Derive(dev, tpl, cfg, seq)
			if err != nil {
				return nil, fmt.Errorf("failed to derive tag for device %q, template %q: %w",
					dev.Code, tpl.NameSuffix, err)
			}
			table.Records = append(table.Records, rec)
			seq++
		}
	}

	first, last, _ := table.TagIDRange()
	b.logger.Info("Tag table complete",
		zap.Int("rows", table.Len()),
		zap.Int("first_tag_id", first),
		zap.Int("last_tag_id", last))

	return table, nil
}
