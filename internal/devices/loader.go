package devices

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/qsc20001102/KingSCADA-Tag/internal/types"
	"gopkg.in/yaml.v3"
)

// Device inventory columns.
const (
	ColumnDeviceCode   = "设备代号"
	ColumnDeviceDesc   = "设备描述"
	ColumnDeviceOffset = "起始偏移"
)

// Template columns.
const (
	ColumnTemplateName    = "name"
	ColumnTemplateDesc    = "desc"
	ColumnTemplateAddress = "address"
	ColumnTemplateType    = "type"
	ColumnTemplateAccess  = "access"
)

var (
	deviceColumns   = []string{ColumnDeviceCode, ColumnDeviceDesc, ColumnDeviceOffset}
	templateColumns = []string{
		ColumnTemplateName, ColumnTemplateDesc, ColumnTemplateAddress,
		ColumnTemplateType, ColumnTemplateAccess,
	}
	templateExtensions = []string{".csv", ".yaml", ".yml"}
)

// LoadDevices reads the device inventory in file order.
func LoadDevices(path string) ([]types.DeviceRecord, error) {
	text, err := readText(path)
	if err != nil {
		return nil, err
	}

	rows, err := readTable(path, text, deviceColumns)
	if err != nil {
		return nil, err
	}

	devices := make([]types.DeviceRecord, 0, len(rows))
	for _, row := range rows {
		devices = append(devices, types.DeviceRecord{
			Code:        row.get(ColumnDeviceCode),
			Description: row.get(ColumnDeviceDesc),
			BaseOffset:  row.get(ColumnDeviceOffset),
			Line:        row.line,
		})
	}

	return devices, nil
}

// LoadTemplateFile reads a CSV or YAML point template.
func LoadTemplateFile(path string) ([]types.TemplateRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadTemplateYAML(path)
	default:
		return loadTemplateCSV(path)
	}
}

func loadTemplateCSV(path string) ([]types.TemplateRecord, error) {
	text, err := readText(path)
	if err != nil {
		return nil, err
	}

	rows, err := readTable(path, text, templateColumns)
	if err != nil {
		return nil, err
	}

	templates := make([]types.TemplateRecord, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, types.TemplateRecord{
			NameSuffix:      row.get(ColumnTemplateName),
			DescSuffix:      row.get(ColumnTemplateDesc),
			RelativeAddress: row.get(ColumnTemplateAddress),
			DataType:        types.DataType(row.get(ColumnTemplateType)),
			AccessMode:      row.get(ColumnTemplateAccess),
			Line:            row.line,
		})
	}

	return templates, nil
}

type templateDocument struct {
	Points []yaml.Node `yaml:"points"`
}

func loadTemplateYAML(path string) ([]types.TemplateRecord, error) {
	text, err := readText(path)
	if err != nil {
		return nil, err
	}

	var doc templateDocument
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	templates := make([]types.TemplateRecord, 0, len(doc.Points))
	for i := range doc.Points {
		node := &doc.Points[i]
		if err := requireKeys(path, node, templateColumns); err != nil {
			return nil, err
		}

		var tpl types.TemplateRecord
		if err := node.Decode(&tpl); err != nil {
			return nil, fmt.Errorf("failed to decode point at %s:%d: %w", path, node.Line, err)
		}
		tpl.Line = node.Line
		templates = append(templates, tpl)
	}

	return templates, nil
}

func requireKeys(path string, node *yaml.Node, keys []string) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%s:%d: point must be a mapping", path, node.Line)
	}
	present := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		present[node.Content[i].Value] = true
	}
	for _, key := range keys {
		if !present[key] {
			return &types.MissingColumnError{Path: fmt.Sprintf("%s:%d", path, node.Line), Column: key}
		}
	}
	return nil
}

// TemplateCatalog finds templates laid out as <search path>/<device type>/<file>.
type TemplateCatalog struct {
	cache       sync.Map
	searchPaths []string
}

func NewTemplateCatalog(searchPaths []string) *TemplateCatalog {
	return &TemplateCatalog{searchPaths: searchPaths}
}

// DeviceTypes lists the device type directories across all search paths.
func (c *TemplateCatalog) DeviceTypes() ([]string, error) {
	seen := make(map[string]bool)
	for _, searchPath := range c.searchPaths {
		entries, err := os.ReadDir(searchPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read template path %s: %w", searchPath, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				seen[entry.Name()] = true
			}
		}
	}
	return sortedKeys(seen), nil
}

// Templates lists the template files available for a device type.
func (c *TemplateCatalog) Templates(deviceType string) ([]string, error) {
	seen := make(map[string]bool)
	for _, searchPath := range c.searchPaths {
		entries, err := os.ReadDir(filepath.Join(searchPath, deviceType))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read templates for %s: %w", deviceType, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && isTemplateFile(entry.Name()) {
				seen[entry.Name()] = true
			}
		}
	}
	return sortedKeys(seen), nil
}

// LoadTemplate resolves and loads a template. The name may omit its extension.
func (c *TemplateCatalog) LoadTemplate(deviceType, name string) ([]types.TemplateRecord, error) {
	key := deviceType + "/" + name
	if cached, ok := c.cache.Load(key); ok {
		return cached.([]types.TemplateRecord), nil
	}

	path, err := c.resolve(deviceType, name)
	if err != nil {
		return nil, err
	}

	templates, err := LoadTemplateFile(path)
	if err != nil {
		return nil, err
	}

	c.cache.Store(key, templates)
	return templates, nil
}

func (c *TemplateCatalog) ClearCache() {
	c.cache.Range(func(key, value interface{}) bool {
		c.cache.Delete(key)
		return true
	})
}

func (c *TemplateCatalog) resolve(deviceType, name string) (string, error) {
	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = candidates[:0]
		for _, ext := range templateExtensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, searchPath := range c.searchPaths {
		for _, candidate := range candidates {
			fullPath := filepath.Join(searchPath, deviceType, candidate)
			if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
				return fullPath, nil
			}
		}
	}

	return "", fmt.Errorf("template not found: %s/%s (searched in: %v)", deviceType, name, c.searchPaths)
}

func isTemplateFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range templateExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
