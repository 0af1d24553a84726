package console

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
)

var namePattern = regexp.MustCompile(`^\s*\w*\s*$`)

// ValidateName returns a ValidationError if name is blank or contains anything but word characters
// and surrounding whitespace.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return newValidationError(FieldError{Field: "name", Message: "name is required"})
	}
	if !namePattern.MatchString(name) {
		return newValidationError(FieldError{Field: "name", Message: "name may only contain letters, digits and underscores"})
	}
	return nil
}

// ToWireInstance converts the form into the remote cluster sent to the server. Each selected
// service name found in the catalog gets its own record holding the non-empty values of the merged
// entry it belongs to. Selected names missing from the catalog are left out, so the result may hold
// fewer records than the form has selected names. The server would reject them as unknown view
// services anyway.
func ToWireInstance(name string, form Form) (model.RemoteCluster, error) {
	if err := ValidateName(name); err != nil {
		return model.RemoteCluster{}, err
	}

	cluster := model.RemoteCluster{
		Name:     strings.TrimSpace(name),
		Services: make([]model.RemoteClusterService, 0, len(form.SelectedServiceNames)),
	}
	for _, serviceName := range form.SelectedServiceNames {
		service, ok := form.Service(serviceName)
		if !ok {
			continue
		}

		properties := model.RemoteClusterProperties{}
		for _, parameter := range service.Parameters {
			if parameter.HasValue() {
				properties[parameter.Name] = *parameter.Value
			}
		}
		cluster.Services = append(cluster.Services, model.RemoteClusterService{
			Name:       serviceName,
			Properties: properties,
		})
	}

	return cluster, nil
}

// Validate checks the name and that every required parameter holds a value.
func (f Form) Validate(name string) error {
	var problems []FieldError
	if err := ValidateName(name); err != nil {
		problems = append(problems, err.(*ValidationError).Problems...)
	}

	for _, service := range f.OrderedServices() {
		for _, parameter := range service.Parameters {
			if parameter.Required && !parameter.HasValue() {
				problems = append(problems, FieldError{
					Field:   service.CommonName + "/" + parameter.Name,
					Message: fmt.Sprintf("%s is required", label(parameter)),
				})
			}
		}
	}

	if len(problems) > 0 {
		return newValidationError(problems...)
	}
	return nil
}

func label(parameter Parameter) string {
	if parameter.Label != "" {
		return parameter.Label
	}
	return parameter.Name
}
