package remotecluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhis2-sre/im-remote-cluster/internal/errdef"
	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db}
}

type repository struct {
	db *gorm.DB
}

func preloadServices(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Services", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Services.GormProperties")
}

func (r repository) find(ctx context.Context, name string) (model.RemoteCluster, error) {
	var cluster model.RemoteCluster
	err := r.db.
		WithContext(ctx).
		Scopes(preloadServices).
		Where("name = ?", name).
		First(&cluster).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.RemoteCluster{}, errdef.NewNotFound("remote cluster %q doesn't exist", name)
	}

	if err != nil {
		return model.RemoteCluster{}, fmt.Errorf("failed to find remote cluster: %v", err)
	}

	return cluster, nil
}

func (r repository) findAll(ctx context.Context) ([]model.RemoteCluster, error) {
	var clusters []model.RemoteCluster
	err := r.db.
		WithContext(ctx).
		Scopes(preloadServices).
		Order("name").
		Find(&clusters).Error
	return clusters, err
}

func (r repository) create(ctx context.Context, cluster *model.RemoteCluster) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Create(cluster).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("remote cluster %q already exists", cluster.Name)
	}

	return err
}

// update replaces the services of the cluster including their properties.
func (r repository) update(ctx context.Context, cluster *model.RemoteCluster) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("remote_cluster_id = ?", cluster.ID).Delete(&model.RemoteClusterService{}).Error
		if err != nil {
			return err
		}

		for i := range cluster.Services {
			cluster.Services[i].ID = 0
		}

		return tx.Save(cluster).Error
	})
}

func (r repository) delete(ctx context.Context, cluster model.RemoteCluster) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Delete(&cluster).Error
}
