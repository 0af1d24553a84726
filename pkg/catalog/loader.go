package catalog

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"gopkg.in/yaml.v3"
)

const (
	serviceDefinitionSuffix = "-service.yaml"
	viewDefinitionSuffix    = "-view.yaml"
)

//go:embed definitions
var definitions embed.FS

type serviceDefinition struct {
	Name       string                `yaml:"name"`
	Version    string                `yaml:"version"`
	Parameters []parameterDefinition `yaml:"parameters"`
}

type parameterDefinition struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Label         string `yaml:"label"`
	Placeholder   string `yaml:"placeholder"`
	DefaultValue  string `yaml:"defaultValue"`
	ClusterConfig string `yaml:"clusterConfig"`
	Required      bool   `yaml:"required"`
	Masked        bool   `yaml:"masked"`
}

type viewDefinition struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Services    []string `yaml:"services"`
}

// Definitions are the view services and views parsed from YAML definitions.
type Definitions struct {
	Services []model.ViewService
	Views    []model.View
}

type definitionStore interface {
	SaveService(ctx context.Context, service *model.ViewService) error
	SaveView(ctx context.Context, view *model.View) error
}

// LoadDefinitions stores the embedded definitions and the ones found in dir, if given. Definitions
// in dir replace embedded ones of the same name. Views requiring unknown services are stored
// anyway.
func LoadDefinitions(ctx context.Context, logger *slog.Logger, dir string, store definitionStore) error {
	embedded, err := fs.Sub(definitions, "definitions")
	if err != nil {
		return err
	}

	defs, err := ParseDefinitions(embedded)
	if err != nil {
		return fmt.Errorf("error parsing embedded definitions: %v", err)
	}

	if dir != "" {
		overrides, err := ParseDefinitions(os.DirFS(dir))
		if err != nil {
			return fmt.Errorf("error parsing definitions in %q: %v", dir, err)
		}
		defs = defs.merge(overrides)
	}

	for _, view := range defs.Views {
		for _, name := range defs.unknownServices(view) {
			logger.WarnContext(ctx, "View requires an unknown service", "view", view.Name, "service", name)
		}
	}

	for i := range defs.Services {
		service := &defs.Services[i]
		if err := store.SaveService(ctx, service); err != nil {
			return fmt.Errorf("error saving view service %q: %v", service.Name, err)
		}
		logger.InfoContext(ctx, "View service loaded", "service", service.Name, "parameters", len(service.Parameters))
	}

	for i := range defs.Views {
		view := &defs.Views[i]
		if err := store.SaveView(ctx, view); err != nil {
			return fmt.Errorf("error saving view %q: %v", view.Name, err)
		}
		logger.InfoContext(ctx, "View loaded", "view", view.Name, "services", view.Services)
	}

	return nil
}

// ParseDefinitions parses all *-service.yaml and *-view.yaml files in the root of fsys. Services
// and views are sorted by name.
func ParseDefinitions(fsys fs.FS) (Definitions, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return Definitions{}, err
	}

	var defs Definitions
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		switch {
		case strings.HasSuffix(name, serviceDefinitionSuffix):
			service, err := parseService(fsys, name)
			if err != nil {
				return Definitions{}, err
			}
			defs.Services = append(defs.Services, service)
		case strings.HasSuffix(name, viewDefinitionSuffix):
			view, err := parseView(fsys, name)
			if err != nil {
				return Definitions{}, err
			}
			defs.Views = append(defs.Views, view)
		}
	}

	if name, ok := duplicate(defs.Services, func(s model.ViewService) string { return s.Name }); ok {
		return Definitions{}, fmt.Errorf("view service %q is defined more than once", name)
	}
	if name, ok := duplicate(defs.Views, func(v model.View) string { return v.Name }); ok {
		return Definitions{}, fmt.Errorf("view %q is defined more than once", name)
	}

	defs.sort()
	return defs, nil
}

func parseService(fsys fs.FS, file string) (model.ViewService, error) {
	var definition serviceDefinition
	if err := unmarshal(fsys, file, &definition); err != nil {
		return model.ViewService{}, err
	}

	commonName := strings.TrimSpace(definition.Name)
	if commonName == "" {
		return model.ViewService{}, fmt.Errorf("view service in %q has no name", file)
	}

	version := strings.TrimSpace(definition.Version)
	service := model.ViewService{
		Name:       model.ServiceName(commonName, version),
		CommonName: commonName,
		Version:    version,
		Parameters: make([]model.ViewServiceParameter, 0, len(definition.Parameters)),
	}

	seen := make(map[string]struct{}, len(definition.Parameters))
	for i, p := range definition.Parameters {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return model.ViewService{}, fmt.Errorf("parameter %d of view service %q has no name", i, service.Name)
		}
		if _, ok := seen[name]; ok {
			return model.ViewService{}, fmt.Errorf("parameter %q of view service %q is defined more than once", name, service.Name)
		}
		seen[name] = struct{}{}

		service.Parameters = append(service.Parameters, model.ViewServiceParameter{
			ViewServiceName: service.Name,
			Name:            name,
			Position:        i,
			Description:     p.Description,
			Label:           p.Label,
			Placeholder:     p.Placeholder,
			DefaultValue:    p.DefaultValue,
			ClusterConfig:   p.ClusterConfig,
			Required:        p.Required,
			Masked:          p.Masked,
		})
	}

	return service, nil
}

func parseView(fsys fs.FS, file string) (model.View, error) {
	var definition viewDefinition
	if err := unmarshal(fsys, file, &definition); err != nil {
		return model.View{}, err
	}

	name := strings.TrimSpace(definition.Name)
	if name == "" {
		return model.View{}, fmt.Errorf("view in %q has no name", file)
	}
	if len(definition.Services) == 0 {
		return model.View{}, fmt.Errorf("view %q requires no services", name)
	}

	services := make([]string, 0, len(definition.Services))
	for _, service := range definition.Services {
		service = strings.TrimSpace(service)
		if !slices.Contains(services, service) {
			services = append(services, service)
		}
	}

	return model.View{
		Name:        name,
		Description: definition.Description,
		Services:    services,
	}, nil
}

func unmarshal(fsys fs.FS, file string, v any) error {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("error reading definition %q: %v", file, err)
	}

	err = yaml.Unmarshal(data, v)
	if err != nil {
		return fmt.Errorf("error parsing definition %q: %v", path.Base(file), err)
	}

	return nil
}

func (d Definitions) merge(overrides Definitions) Definitions {
	services := make(map[string]model.ViewService, len(d.Services)+len(overrides.Services))
	for _, service := range slices.Concat(d.Services, overrides.Services) {
		services[service.Name] = service
	}
	views := make(map[string]model.View, len(d.Views)+len(overrides.Views))
	for _, view := range slices.Concat(d.Views, overrides.Views) {
		views[view.Name] = view
	}

	var merged Definitions
	for _, service := range services {
		merged.Services = append(merged.Services, service)
	}
	for _, view := range views {
		merged.Views = append(merged.Views, view)
	}
	merged.sort()
	return merged
}

func (d Definitions) sort() {
	slices.SortFunc(d.Services, func(a, b model.ViewService) int { return strings.Compare(a.Name, b.Name) })
	slices.SortFunc(d.Views, func(a, b model.View) int { return strings.Compare(a.Name, b.Name) })
}

func (d Definitions) unknownServices(view model.View) []string {
	var unknown []string
	for _, name := range view.Services {
		known := slices.ContainsFunc(d.Services, func(s model.ViewService) bool { return s.Name == name })
		if !known {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

func duplicate[T any](items []T, key func(T) string) (string, bool) {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			return k, true
		}
		seen[k] = struct{}{}
	}
	return "", false
}
