package model

import (
	"fmt"
	"time"
)

// ViewService is a versioned backend service a view can require. Services sharing a CommonName are
// different versions of the same logical service.
// swagger:model ViewService
type ViewService struct {
	Name       string                 `json:"name" gorm:"primaryKey"`
	CommonName string                 `json:"commonName" gorm:"index"`
	Version    string                 `json:"version"`
	Parameters []ViewServiceParameter `json:"parameters" gorm:"foreignKey:ViewServiceName;references:Name;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt  time.Time              `json:"-"`
	UpdatedAt  time.Time              `json:"-"`
}

// ServiceName returns the catalog name of a service given its common name and version.
func ServiceName(commonName, version string) string {
	if version == "" {
		return commonName
	}
	return fmt.Sprintf("%s{%s}", commonName, version)
}

func (s ViewService) FindParameter(name string) (ViewServiceParameter, bool) {
	for _, parameter := range s.Parameters {
		if parameter.Name == name {
			return parameter, true
		}
	}
	return ViewServiceParameter{}, false
}

// ViewServiceParameter is a configurable property of a view service. Position keeps the declared
// order since parameters are displayed in that order.
type ViewServiceParameter struct {
	ViewServiceName string `json:"-" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"primaryKey"`
	Position        int    `json:"-"`
	Description     string `json:"description,omitempty"`
	Label           string `json:"label,omitempty"`
	Placeholder     string `json:"placeholder,omitempty"`
	DefaultValue    string `json:"defaultValue,omitempty"`
	ClusterConfig   string `json:"clusterConfig,omitempty"`
	Required        bool   `json:"required"`
	Masked          bool   `json:"masked"`
}
