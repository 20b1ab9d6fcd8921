package system

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qsc20001102/KingSCADA-Tag/internal/config"
	"github.com/qsc20001102/KingSCADA-Tag/internal/devices"
	"github.com/qsc20001102/KingSCADA-Tag/internal/export"
	"github.com/qsc20001102/KingSCADA-Tag/internal/tags"
	"github.com/qsc20001102/KingSCADA-Tag/internal/types"
	"go.uber.org/zap"
)

// Runner drives one generation: validate settings, load both inputs, build
// the tag table and write it.
type Runner struct {
	config    *config.Config
	catalog   *devices.TemplateCatalog
	validator *devices.SettingsValidator
	builder   *tags.Builder
	writer    *export.Writer
	logger    *zap.Logger
	phase     Phase
}

func NewRunner(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	validator, err := devices.NewSettingsValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create settings validator: %w", err)
	}

	policy, err := tags.ParseUnknownTypePolicy(cfg.Generation.UnknownDataType)
	if err != nil {
		return nil, err
	}

	layout, err := export.LayoutByName(cfg.Output.Layout)
	if err != nil {
		return nil, err
	}

	return &Runner{
		config:    cfg,
		catalog:   devices.NewTemplateCatalog(cfg.Input.TemplatePaths),
		validator: validator,
		builder:   tags.NewBuilder(tags.NewDeriver(policy), logger),
		writer:    export.NewWriter(layout, logger),
		logger:    logger,
		phase:     PhaseIdle,
	}, nil
}

func (r *Runner) Catalog() *devices.TemplateCatalog {
	return r.catalog
}

func (r *Runner) Phase() Phase {
	return r.phase
}

// Run performs the whole generation. Nothing is written unless every row
// was derived.
func (r *Runner) Run() (*RunResult, error) {
	started := time.Now()
	runID := uuid.New()
	logger := r.logger.With(zap.String("run_id", runID.String()))

	result, err := r.run(runID, logger)
	if err != nil {
		if perr := r.setPhase(PhaseFailed, logger); perr != nil {
			logger.Error("Phase change failed", zap.Error(perr))
		}
		logger.Error("Generation failed", zap.Error(err))
		return nil, err
	}
	result.Duration = time.Since(started)

	if err := r.setPhase(PhaseDone, logger); err != nil {
		logger.Error("Phase change failed", zap.Error(err))
	}
	logger.Info("Generation complete",
		zap.String("output", result.Output),
		zap.Int("rows", result.Rows),
		zap.Int("first_tag_id", result.FirstTagID),
		zap.Int("last_tag_id", result.LastTagID),
		zap.Duration("duration", result.Duration))

	return result, nil
}

func (r *Runner) run(runID uuid.UUID, logger *zap.Logger) (*RunResult, error) {
	settings := r.config.Generation.UserConfig

	if err := r.setPhase(PhaseValidating, logger); err != nil {
		return nil, err
	}
	if err := r.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := r.validator.Validate(settings); err != nil {
		return nil, fmt.Errorf("invalid generation settings: %w", err)
	}

	if err := r.setPhase(PhaseLoading, logger); err != nil {
		return nil, err
	}
	deviceSet, err := r.loadDevices(logger)
	if err != nil {
		return nil, err
	}
	templateSet, err := r.loadTemplates(logger)
	if err != nil {
		return nil, err
	}

	if err := r.setPhase(PhaseBuilding, logger); err != nil {
		return nil, err
	}
	table, err := r.builder.Build(deviceSet, templateSet, settings)
	if err != nil {
		return nil, err
	}

	if err := r.setPhase(PhaseWriting, logger); err != nil {
		return nil, err
	}
	if err := r.writer.WriteFile(r.config.Output.Path, table); err != nil {
		return nil, err
	}

	first, last, _ := table.TagIDRange()
	return &RunResult{
		RunID:      runID,
		Output:     r.config.Output.Path,
		Layout:     r.writer.Layout().Name(),
		Devices:    len(deviceSet),
		Templates:  len(templateSet),
		Rows:       table.Len(),
		FirstTagID: first,
		LastTagID:  last,
	}, nil
}

func (r *Runner) loadDevices(logger *zap.Logger) ([]types.DeviceRecord, error) {
	path := r.config.Input.Devices
	deviceSet, err := devices.LoadDevices(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load devices: %w", err)
	}
	if len(deviceSet) == 0 {
		logger.Warn("Device file is empty", zap.String("path", path))
		return nil, &types.EmptyInputError{Set: "devices", Path: path}
	}

	logger.Info("Devices loaded", zap.String("path", path), zap.Int("count", len(deviceSet)))
	return deviceSet, nil
}

func (r *Runner) loadTemplates(logger *zap.Logger) ([]types.TemplateRecord, error) {
	in := r.config.Input

	var (
		templateSet []types.TemplateRecord
		source      string
		err         error
	)
	if in.UsesCatalog() {
		source = in.DeviceType + "/" + in.TemplateName
		templateSet, err = r.catalog.LoadTemplate(in.DeviceType, in.TemplateName)
	} else {
		source = in.Template
		templateSet, err = devices.LoadTemplateFile(in.Template)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if len(templateSet) == 0 {
		logger.Warn("Template is empty", zap.String("template", source))
		return nil, &types.EmptyInputError{Set: "templates", Path: source}
	}

	logger.Info("Template loaded", zap.String("template", source), zap.Int("count", len(templateSet)))
	return templateSet, nil
}

func (r *Runner) setPhase(to Phase, logger *zap.Logger) error {
	if err := ValidateTransition(r.phase, to); err != nil {
		return err
	}
	logger.Debug("Phase change", zap.Stringer("from", r.phase), zap.Stringer("to", to))
	r.phase = to
	return nil
}
