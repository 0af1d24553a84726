package model

import (
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"
)

// RemoteCluster is a named configuration binding view services to concrete parameter values.
// swagger:model RemoteCluster
type RemoteCluster struct {
	ID        uint                   `json:"id" gorm:"primaryKey"`
	Name      string                 `json:"name" gorm:"uniqueIndex"`
	Services  []RemoteClusterService `json:"services" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

func (c RemoteCluster) FindService(name string) (RemoteClusterService, bool) {
	for _, service := range c.Services {
		if service.Name == name {
			return service, true
		}
	}
	return RemoteClusterService{}, false
}

// ServiceNames returns the names of the services in the order they are stored.
func (c RemoteCluster) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for _, service := range c.Services {
		names = append(names, service.Name)
	}
	return names
}

type RemoteClusterProperties map[string]string

type RemoteClusterService struct {
	ID              uint   `json:"-" gorm:"primaryKey"`
	RemoteClusterID uint   `json:"-" gorm:"index"`
	Name            string `json:"name"`
	Position        int    `json:"-"`

	GormProperties []RemoteClusterProperty `json:"-" gorm:"foreignKey:RemoteClusterServiceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Properties     RemoteClusterProperties `json:"properties" gorm:"-:all"`
}

type RemoteClusterProperty struct {
	RemoteClusterServiceID uint   `gorm:"primaryKey"`
	Name                   string `gorm:"primaryKey"`
	Value                  string `gorm:"type:text"`
}

func (s *RemoteClusterService) BeforeSave(_ *gorm.DB) error {
	s.GormProperties = make([]RemoteClusterProperty, 0, len(s.Properties))
	for name, value := range s.Properties {
		s.GormProperties = append(s.GormProperties, RemoteClusterProperty{
			RemoteClusterServiceID: s.ID,
			Name:                   name,
			Value:                  value,
		})
	}
	slices.SortFunc(s.GormProperties, func(a, b RemoteClusterProperty) int {
		return strings.Compare(a.Name, b.Name)
	})
	return nil
}

func (s *RemoteClusterService) AfterFind(_ *gorm.DB) error {
	s.Properties = make(RemoteClusterProperties, len(s.GormProperties))
	for _, property := range s.GormProperties {
		s.Properties[property.Name] = property.Value
	}
	return nil
}
