package catalog

import (
	"context"

	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
)

func NewService(repository *repository) Service {
	return Service{repository}
}

// Service gives read access to the view services and views remote clusters are configured with.
type Service struct {
	repository *repository
}

func (s Service) FindService(ctx context.Context, name string) (model.ViewService, error) {
	return s.repository.findService(ctx, name)
}

// FindServices returns the services of given names that exist. Unknown names are ignored.
func (s Service) FindServices(ctx context.Context, names []string) ([]model.ViewService, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return s.repository.findServices(ctx, names)
}

func (s Service) FindAllServices(ctx context.Context) ([]model.ViewService, error) {
	return s.repository.findAllServices(ctx)
}

func (s Service) FindView(ctx context.Context, name string) (model.View, error) {
	return s.repository.findView(ctx, name)
}

func (s Service) FindAllViews(ctx context.Context) ([]model.View, error) {
	return s.repository.findAllViews(ctx)
}

func (s Service) SaveService(ctx context.Context, service *model.ViewService) error {
	return s.repository.saveService(ctx, service)
}

func (s Service) SaveView(ctx context.Context, view *model.View) error {
	return s.repository.saveView(ctx, view)
}
