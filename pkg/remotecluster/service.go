package remotecluster

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/dhis2-sre/im-remote-cluster/internal/errdef"
	ctxlog "github.com/dhis2-sre/im-remote-cluster/internal/log"
	"github.com/dhis2-sre/im-remote-cluster/pkg/event"
	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
)

const (
	actionCreated = "created"
	actionUpdated = "updated"
	actionDeleted = "deleted"
)

func NewService(logger *slog.Logger, repository *repository, catalog catalog, masker masker, publisher event.Publisher) *Service {
	return &Service{
		logger:     logger,
		repository: repository,
		catalog:    catalog,
		masker:     masker,
		publisher:  publisher,
	}
}

type catalog interface {
	FindServices(ctx context.Context, names []string) ([]model.ViewService, error)
}

type masker interface {
	Mask(value string) (string, error)
	Unmask(value string) (string, error)
}

type Service struct {
	logger     *slog.Logger
	repository *repository
	catalog    catalog
	masker     masker
	publisher  event.Publisher
}

func (s *Service) Find(ctx context.Context, name string) (model.RemoteCluster, error) {
	cluster, err := s.repository.find(ctx, name)
	if err != nil {
		return model.RemoteCluster{}, err
	}

	return s.unmaskOne(ctx, cluster)
}

func (s *Service) FindAll(ctx context.Context) ([]model.RemoteCluster, error) {
	clusters, err := s.repository.findAll(ctx)
	if err != nil {
		return nil, err
	}

	return s.unmask(ctx, clusters)
}

// Create stores a new remote cluster. Every service has to exist in the catalog. Values of masked
// parameters are stored encrypted.
func (s *Service) Create(ctx context.Context, name string, services []model.RemoteClusterService) (model.RemoteCluster, error) {
	cluster := model.RemoteCluster{
		Name:     strings.TrimSpace(name),
		Services: services,
	}

	stored, err := s.prepare(ctx, cluster)
	if err != nil {
		return model.RemoteCluster{}, err
	}

	err = s.repository.create(ctx, &stored)
	if err != nil {
		return model.RemoteCluster{}, err
	}

	s.publish(ctx, actionCreated, stored.Name)
	return s.unmaskOne(ctx, stored)
}

// Update replaces the services of an existing remote cluster.
func (s *Service) Update(ctx context.Context, name string, services []model.RemoteClusterService) (model.RemoteCluster, error) {
	cluster, err := s.repository.find(ctx, strings.TrimSpace(name))
	if err != nil {
		return model.RemoteCluster{}, err
	}
	cluster.Services = services

	stored, err := s.prepare(ctx, cluster)
	if err != nil {
		return model.RemoteCluster{}, err
	}

	err = s.repository.update(ctx, &stored)
	if err != nil {
		return model.RemoteCluster{}, err
	}

	s.publish(ctx, actionUpdated, stored.Name)
	return s.unmaskOne(ctx, stored)
}

func (s *Service) Delete(ctx context.Context, name string) error {
	cluster, err := s.repository.find(ctx, strings.TrimSpace(name))
	if err != nil {
		return err
	}

	err = s.repository.delete(ctx, cluster)
	if err != nil {
		return err
	}

	s.publish(ctx, actionDeleted, cluster.Name)
	return nil
}

// prepare validates the services of the cluster against the catalog and returns a copy fit for
// storing.
func (s *Service) prepare(ctx context.Context, cluster model.RemoteCluster) (model.RemoteCluster, error) {
	if cluster.Name == "" {
		return model.RemoteCluster{}, errdef.NewBadRequest("remote cluster name is required")
	}

	names := make([]string, 0, len(cluster.Services))
	seen := make(map[string]struct{}, len(cluster.Services))
	for _, service := range cluster.Services {
		name := strings.TrimSpace(service.Name)
		if name == "" {
			return model.RemoteCluster{}, errdef.NewBadRequest("view service name is required")
		}
		if _, ok := seen[name]; ok {
			return model.RemoteCluster{}, errdef.NewBadRequest("view service %q is listed more than once", name)
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	known, err := s.catalog.FindServices(ctx, names)
	if err != nil {
		return model.RemoteCluster{}, err
	}
	catalogServices := make(map[string]model.ViewService, len(known))
	for _, service := range known {
		catalogServices[service.Name] = service
	}

	services := make([]model.RemoteClusterService, 0, len(cluster.Services))
	for i, name := range names {
		catalogService, ok := catalogServices[name]
		if !ok {
			return model.RemoteCluster{}, errdef.NewBadRequest("invalid view service name %q", name)
		}

		properties, err := s.maskProperties(catalogService, cluster.Services[i].Properties)
		if err != nil {
			return model.RemoteCluster{}, err
		}

		services = append(services, model.RemoteClusterService{
			Name:       name,
			Position:   i,
			Properties: properties,
		})
	}

	cluster.Services = services
	return cluster, nil
}

func (s *Service) maskProperties(service model.ViewService, properties model.RemoteClusterProperties) (model.RemoteClusterProperties, error) {
	masked := make(model.RemoteClusterProperties, len(properties))
	for name, value := range properties {
		parameter, ok := service.FindParameter(name)
		if !ok || !parameter.Masked || value == "" {
			masked[name] = value
			continue
		}

		v, err := s.masker.Mask(value)
		if err != nil {
			return nil, err
		}
		masked[name] = v
	}
	return masked, nil
}

func (s *Service) unmaskOne(ctx context.Context, cluster model.RemoteCluster) (model.RemoteCluster, error) {
	clusters, err := s.unmask(ctx, []model.RemoteCluster{cluster})
	if err != nil {
		return model.RemoteCluster{}, err
	}
	return clusters[0], nil
}

// unmask decrypts the values of parameters the catalog marks as masked. Other values are returned
// as stored even if they look encrypted.
func (s *Service) unmask(ctx context.Context, clusters []model.RemoteCluster) ([]model.RemoteCluster, error) {
	var names []string
	for _, cluster := range clusters {
		for _, service := range cluster.Services {
			if !slices.Contains(names, service.Name) {
				names = append(names, service.Name)
			}
		}
	}

	known, err := s.catalog.FindServices(ctx, names)
	if err != nil {
		return nil, err
	}
	catalogServices := make(map[string]model.ViewService, len(known))
	for _, service := range known {
		catalogServices[service.Name] = service
	}

	unmasked := make([]model.RemoteCluster, len(clusters))
	for i, cluster := range clusters {
		services := make([]model.RemoteClusterService, len(cluster.Services))
		for j, service := range cluster.Services {
			properties := maps.Clone(service.Properties)
			if properties == nil {
				properties = model.RemoteClusterProperties{}
			}
			catalogService := catalogServices[service.Name]
			for name, value := range properties {
				parameter, ok := catalogService.FindParameter(name)
				if !ok || !parameter.Masked {
					continue
				}
				plain, err := s.masker.Unmask(value)
				if err != nil {
					return nil, err
				}
				properties[name] = plain
			}
			service.Properties = properties
			service.GormProperties = nil
			services[j] = service
		}
		cluster.Services = services
		unmasked[i] = cluster
	}
	return unmasked, nil
}

// publish notifies listeners of a change. The change itself is stored already so failures are
// only logged.
func (s *Service) publish(ctx context.Context, action, name string) {
	ctx = ctxlog.NewContextWithRemoteCluster(ctx, name)
	err := s.publisher.Publish(ctx, event.Event{
		Type:   event.RemoteClusterUpdate,
		Action: action,
		Name:   name,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish remote cluster event", "error", err, "action", action)
	}
}
