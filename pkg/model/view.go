package model

import (
	"time"

	"gorm.io/gorm"
)

// View is a bundled UI module requiring one or more view services. Services holds the catalog names
// of the required services in declaration order.
// swagger:model View
type View struct {
	Name        string               `json:"name" gorm:"primaryKey"`
	Description string               `json:"description"`
	Mappings    []ViewServiceMapping `json:"-" gorm:"foreignKey:ViewName;references:Name;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Services    []string             `json:"services" gorm:"-:all"`
	CreatedAt   time.Time            `json:"-"`
	UpdatedAt   time.Time            `json:"-"`
}

type ViewServiceMapping struct {
	ViewName    string `gorm:"primaryKey"`
	ServiceName string `gorm:"primaryKey"`
	Position    int
}

func (v *View) BeforeSave(_ *gorm.DB) error {
	v.Mappings = make([]ViewServiceMapping, 0, len(v.Services))
	for i, name := range v.Services {
		v.Mappings = append(v.Mappings, ViewServiceMapping{
			ViewName:    v.Name,
			ServiceName: name,
			Position:    i,
		})
	}
	return nil
}

func (v *View) AfterFind(_ *gorm.DB) error {
	if v.Mappings == nil {
		return nil
	}
	v.Services = make([]string, 0, len(v.Mappings))
	for _, mapping := range v.Mappings {
		v.Services = append(v.Services, mapping.ServiceName)
	}
	return nil
}
