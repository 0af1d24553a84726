package main

import (
	"io"

	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"gopkg.in/yaml.v3"
)

type clusterOutput struct {
	Name     string          `yaml:"name"`
	Services []serviceOutput `yaml:"services"`
}

type serviceOutput struct {
	Name       string            `yaml:"name"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

func toOutput(cluster model.RemoteCluster) clusterOutput {
	output := clusterOutput{Name: cluster.Name, Services: []serviceOutput{}}
	for _, service := range cluster.Services {
		output.Services = append(output.Services, serviceOutput{
			Name:       service.Name,
			Properties: service.Properties,
		})
	}
	return output
}

func printYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
