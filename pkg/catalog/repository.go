package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhis2-sre/im-remote-cluster/internal/errdef"
	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db}
}

type repository struct {
	db *gorm.DB
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func (r repository) findService(ctx context.Context, name string) (model.ViewService, error) {
	var service model.ViewService
	err := r.db.
		WithContext(ctx).
		Preload("Parameters", orderByPosition).
		Where("name = ?", name).
		First(&service).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ViewService{}, errdef.NewNotFound("view service %q doesn't exist", name)
	}

	if err != nil {
		return model.ViewService{}, fmt.Errorf("failed to find view service: %v", err)
	}

	return service, nil
}

func (r repository) findServices(ctx context.Context, names []string) ([]model.ViewService, error) {
	var services []model.ViewService
	err := r.db.
		WithContext(ctx).
		Preload("Parameters", orderByPosition).
		Where("name IN ?", names).
		Order("name").
		Find(&services).Error
	return services, err
}

func (r repository) findAllServices(ctx context.Context) ([]model.ViewService, error) {
	var services []model.ViewService
	err := r.db.
		WithContext(ctx).
		Preload("Parameters", orderByPosition).
		Order("name").
		Find(&services).Error
	return services, err
}

func (r repository) findView(ctx context.Context, name string) (model.View, error) {
	var view model.View
	err := r.db.
		WithContext(ctx).
		Preload("Mappings", orderByPosition).
		Where("name = ?", name).
		First(&view).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.View{}, errdef.NewNotFound("view %q doesn't exist", name)
	}

	if err != nil {
		return model.View{}, fmt.Errorf("failed to find view: %v", err)
	}

	return view, nil
}

func (r repository) findAllViews(ctx context.Context) ([]model.View, error) {
	var views []model.View
	err := r.db.
		WithContext(ctx).
		Preload("Mappings", orderByPosition).
		Order("name").
		Find(&views).Error
	return views, err
}

// saveService inserts or replaces the service including all its parameters.
func (r repository) saveService(ctx context.Context, service *model.ViewService) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("view_service_name = ?", service.Name).Delete(&model.ViewServiceParameter{}).Error
		if err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"common_name", "version", "updated_at"}),
		}).Create(service).Error
	})
}

// saveView inserts or replaces the view including its service mappings.
func (r repository) saveView(ctx context.Context, view *model.View) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("view_name = ?", view.Name).Delete(&model.ViewServiceMapping{}).Error
		if err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
		}).Create(view).Error
	})
}
