package console

import (
	"slices"

	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
)

// ViewSelection is a catalog view and whether the user selected it.
type ViewSelection struct {
	model.View
	Checked bool
}

// Parameter is a parameter of a merged service together with the value entered for it. A nil
// Value means no value was entered.
type Parameter struct {
	model.ViewServiceParameter
	Value *string
}

// HasValue reports whether the parameter holds a non-empty value.
func (p Parameter) HasValue() bool {
	return p.Value != nil && *p.Value != ""
}

// Service is the merged entry of all selected catalog services sharing a common name.
type Service struct {
	CommonName string
	// Names are the catalog names of the services merged into this entry in the order they were
	// encountered.
	Names      []string
	Parameters []Parameter
}

func (s Service) FindParameter(name string) (Parameter, bool) {
	i := s.indexOf(name)
	if i < 0 {
		return Parameter{}, false
	}
	return s.Parameters[i], true
}

func (s Service) indexOf(name string) int {
	return slices.IndexFunc(s.Parameters, func(p Parameter) bool {
		return p.Name == name
	})
}

// Form is the aggregated state the user edits. It is derived from the selected views and is
// replaced as a whole whenever the selection changes.
type Form struct {
	// SelectedServiceNames is the union of the services of the checked views in order of first
	// appearance.
	SelectedServiceNames []string
	// CommonNames orders Services for display.
	CommonNames []string
	Services    map[string]Service
	// owners maps the selected service names found in the catalog to their common name.
	owners map[string]string
}

// Service returns the merged entry owning the given catalog service name.
func (f Form) Service(serviceName string) (Service, bool) {
	commonName, ok := f.owners[serviceName]
	if !ok {
		return Service{}, false
	}
	service, ok := f.Services[commonName]
	return service, ok
}

// OrderedServices returns the merged services in display order.
func (f Form) OrderedServices() []Service {
	services := make([]Service, 0, len(f.CommonNames))
	for _, commonName := range f.CommonNames {
		services = append(services, f.Services[commonName])
	}
	return services
}

// withValue returns a copy of the form with value set on the given parameter. The receiver is left
// untouched.
func (f Form) withValue(commonName, parameter, value string) (Form, bool) {
	service, ok := f.Services[commonName]
	if !ok {
		return f, false
	}
	i := service.indexOf(parameter)
	if i < 0 {
		return f, false
	}

	parameters := slices.Clone(service.Parameters)
	parameters[i].Value = &value
	service.Parameters = parameters

	services := make(map[string]Service, len(f.Services))
	for name, s := range f.Services {
		services[name] = s
	}
	services[commonName] = service
	f.Services = services
	return f, true
}

// Rebuild aggregates the services required by the checked views. Services are merged by common
// name: the parameter list of a merged entry is the union of the parameters of its variants in the
// order they are first seen. A parameter takes its value from the variant which added it, later
// variants never fill or overwrite it.
//
// Values entered in previous are carried over to parameters which are still part of the form.
// Values of existing are only applied to parameters without a carried over value and should be
// given on the first build after loading the remote cluster only. Services unknown to the catalog are skipped.
func Rebuild(views []ViewSelection, services map[string]model.ViewService, previous *Form, existing *model.RemoteCluster) Form {
	form := Form{
		SelectedServiceNames: []string{},
		CommonNames:          []string{},
		Services:             map[string]Service{},
		owners:               map[string]string{},
	}

	for _, view := range views {
		if !view.Checked {
			continue
		}

		for _, name := range view.Services {
			if slices.Contains(form.SelectedServiceNames, name) {
				continue
			}
			form.SelectedServiceNames = append(form.SelectedServiceNames, name)

			service, ok := services[name]
			if !ok {
				continue
			}
			form.merge(service, previous, existing)
		}
	}

	return form
}

func (f *Form) merge(service model.ViewService, previous *Form, existing *model.RemoteCluster) {
	commonName := service.CommonName
	if commonName == "" {
		commonName = service.Name
	}
	f.owners[service.Name] = commonName

	entry, ok := f.Services[commonName]
	if !ok {
		entry = Service{CommonName: commonName}
		f.CommonNames = append(f.CommonNames, commonName)
	}
	entry.Names = append(entry.Names, service.Name)

	var persisted model.RemoteClusterProperties
	if existing != nil {
		if s, ok := existing.FindService(service.Name); ok {
			persisted = s.Properties
		}
	}

	for _, parameter := range service.Parameters {
		i := entry.indexOf(parameter.Name)
		if i < 0 {
			entry.Parameters = append(entry.Parameters, Parameter{ViewServiceParameter: parameter})
			i = len(entry.Parameters) - 1
			if value, ok := previousValue(previous, commonName, parameter.Name); ok {
				entry.Parameters[i].Value = value
			} else if value, ok := persisted[parameter.Name]; ok {
				entry.Parameters[i].Value = &value
			}
		}
	}

	f.Services[commonName] = entry
}

func previousValue(previous *Form, commonName, parameter string) (*string, bool) {
	if previous == nil {
		return nil, false
	}
	service, ok := previous.Services[commonName]
	if !ok {
		return nil, false
	}
	p, ok := service.FindParameter(parameter)
	if !ok || p.Value == nil {
		return nil, false
	}
	return p.Value, true
}
