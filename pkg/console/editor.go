package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"golang.org/x/sync/errgroup"
)

// Backend is the remote cluster API the editor works against.
type Backend interface {
	ListRemoteClusters(ctx context.Context) ([]model.RemoteCluster, error)
	FindRemoteCluster(ctx context.Context, name string) (model.RemoteCluster, error)
	ListServices(ctx context.Context) ([]model.ViewService, error)
	ListViews(ctx context.Context) ([]model.View, error)
	SaveRemoteCluster(ctx context.Context, cluster model.RemoteCluster, update bool) (model.RemoteCluster, error)
}

// Alerter shows the outcome of an action to the user.
type Alerter interface {
	Success(title string)
	Error(title, message string)
}

type Choice int

const (
	ChoiceCancel Choice = iota
	ChoiceSave
	ChoiceDiscard
)

// Prompter asks the user what to do with unsaved changes.
type Prompter interface {
	Prompt(ctx context.Context) (Choice, error)
}

// PrompterFunc allows using a function as a Prompter.
type PrompterFunc func(ctx context.Context) (Choice, error)

func (f PrompterFunc) Prompt(ctx context.Context) (Choice, error) {
	return f(ctx)
}

const (
	titleLoadServices = "Cannot load view cluster configurations"
	titleLoadViews    = "Cannot load views"
	titleSave         = "Cannot create cluster instance"
)

// Editor creates and edits a single remote cluster.
//
// Calls may come from several goroutines. Only Save and Load talk to the backend and neither holds
// the lock while doing so, a second Save issued while one is in flight returns ErrSaveInProgress.
type Editor struct {
	logger   *slog.Logger
	backend  Backend
	alerter  Alerter
	prompter Prompter

	mu       sync.Mutex
	vm       ViewModel
	services map[string]model.ViewService
	// existing is the loaded remote cluster until the first rebuild consumed it.
	existing  *model.RemoteCluster
	saving    bool
	observers map[int]func(model.RemoteCluster)
	observer  int
}

// NewEditor returns an editor backed by backend. Alerts are logged if alerter is nil. A nil
// prompter keeps the user on a form with unsaved changes.
func NewEditor(logger *slog.Logger, backend Backend, alerter Alerter, prompter Prompter) *Editor {
	if alerter == nil {
		alerter = logAlerter{logger}
	}
	if prompter == nil {
		prompter = PrompterFunc(func(context.Context) (Choice, error) {
			return ChoiceCancel, nil
		})
	}
	return &Editor{
		logger:    logger,
		backend:   backend,
		alerter:   alerter,
		prompter:  prompter,
		vm:        ViewModel{State: StateLoading},
		observers: map[int]func(model.RemoteCluster){},
	}
}

// Model returns the current view model.
func (e *Editor) Model() ViewModel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vm
}

// Load fetches the catalogs and, if name is not empty, the remote cluster to edit. All fetches run
// concurrently and must succeed for the editor to become ready. A failure is alerted and returned
// as a LoadError. Loading while a save is in flight returns ErrSaveInProgress.
func (e *Editor) Load(ctx context.Context, name string) (ViewModel, error) {
	name = strings.TrimSpace(name)
	mode := ModeCreate
	if name != "" {
		mode = ModeEdit
	}

	e.mu.Lock()
	if e.saving {
		defer e.mu.Unlock()
		return e.vm, ErrSaveInProgress
	}
	e.vm = ViewModel{State: StateLoading, Mode: mode, Name: name}
	e.mu.Unlock()

	var (
		services []model.ViewService
		views    []model.View
		cluster  model.RemoteCluster
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		services, err = e.backend.ListServices(gctx)
		if err != nil {
			return newLoadError("view services", titleLoadServices, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		views, err = e.backend.ListViews(gctx)
		if err != nil {
			return newLoadError("views", titleLoadViews, err)
		}
		return nil
	})
	if mode == ModeEdit {
		g.Go(func() error {
			var err error
			cluster, err = e.backend.FindRemoteCluster(gctx, name)
			if err != nil {
				return newLoadError("remote cluster", "Cannot load cluster with name "+name, err)
			}
			return nil
		})
	}

	err := g.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			e.alerter.Error(loadErr.Title, loadErr.Message)
		}
		e.vm = ViewModel{State: StateLoadFailed, Mode: mode, Name: name, Err: err}
		return e.vm, err
	}

	e.services = make(map[string]model.ViewService, len(services))
	for _, service := range services {
		e.services[service.Name] = service
	}

	selections := make([]ViewSelection, 0, len(views))
	for _, view := range views {
		selections = append(selections, ViewSelection{View: view})
	}
	// the merge order of services sharing a common name follows the view order
	slices.SortStableFunc(selections, func(a, b ViewSelection) int {
		return strings.Compare(a.Name, b.Name)
	})

	vm := ViewModel{State: StateReady, Mode: mode, Views: selections}
	e.existing = nil
	if mode == ModeEdit {
		vm.Name = cluster.Name
		vm.Locked = true
		for i, view := range vm.Views {
			vm.Views[i].Checked = covers(cluster, view.View)
		}
		e.existing = &cluster
	}

	vm.Form = e.rebuild(vm.Views, nil)
	e.vm = vm
	return e.vm, nil
}

// covers reports whether every service the view requires is part of the cluster.
func covers(cluster model.RemoteCluster, view model.View) bool {
	if len(view.Services) == 0 {
		return false
	}
	for _, name := range view.Services {
		if _, ok := cluster.FindService(name); !ok {
			return false
		}
	}
	return true
}

// rebuild must be called with the lock held. The loaded remote cluster only takes part in the first
// rebuild.
func (e *Editor) rebuild(views []ViewSelection, previous *Form) Form {
	form := Rebuild(views, e.services, previous, e.existing)
	e.existing = nil
	return form
}

// update applies f to the current view model if the form can be edited.
func (e *Editor) update(f func(vm ViewModel) (ViewModel, error)) (ViewModel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.saving {
		return e.vm, ErrSaveInProgress
	}
	if !e.vm.State.editable() {
		return e.vm, ErrNotReady
	}
	if e.vm.Locked {
		return e.vm, ErrLocked
	}

	vm, err := f(e.vm)
	if err != nil {
		return e.vm, err
	}
	vm.Dirty = true
	e.vm = vm
	return e.vm, nil
}

// ToggleView selects or deselects the named view and rebuilds the form.
func (e *Editor) ToggleView(name string) (ViewModel, error) {
	return e.update(func(vm ViewModel) (ViewModel, error) {
		vm, ok := vm.withView(name)
		if !ok {
			return vm, fmt.Errorf("view %q doesn't exist", name)
		}
		previous := vm.Form
		vm.Form = e.rebuild(vm.Views, &previous)
		return vm, nil
	})
}

// SetName sets the name of the remote cluster to create. Remote clusters cannot be renamed.
func (e *Editor) SetName(name string) (ViewModel, error) {
	return e.update(func(vm ViewModel) (ViewModel, error) {
		if vm.Mode == ModeEdit {
			return vm, fmt.Errorf("remote cluster %q cannot be renamed", vm.Name)
		}
		vm.Name = name
		return vm, nil
	})
}

// SetParameter sets the value of a parameter of the merged service with the given common name.
func (e *Editor) SetParameter(commonName, parameter, value string) (ViewModel, error) {
	return e.update(func(vm ViewModel) (ViewModel, error) {
		form, ok := vm.Form.withValue(commonName, parameter, value)
		if !ok {
			return vm, fmt.Errorf("parameter %q of view service %q doesn't exist", parameter, commonName)
		}
		vm.Form = form
		return vm, nil
	})
}

// ToggleEdit locks or unlocks the form of an existing remote cluster. A form with unsaved changes
// cannot be locked again, it has to be saved or cancelled first.
func (e *Editor) ToggleEdit() (ViewModel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.vm.Mode != ModeEdit || !e.vm.State.editable() {
		return e.vm, ErrNotReady
	}
	if e.saving {
		return e.vm, ErrSaveInProgress
	}
	if !e.vm.Locked && e.vm.Dirty {
		return e.vm, ErrUnsavedChanges
	}
	vm := e.vm
	vm.Locked = !vm.Locked
	e.vm = vm
	return e.vm, nil
}

// Cancel drops the changes. An existing remote cluster is loaded again and locked, the form of a
// new one is reset. A failed load is not retried, call Load for that.
func (e *Editor) Cancel(ctx context.Context) (ViewModel, error) {
	e.mu.Lock()
	if e.saving {
		defer e.mu.Unlock()
		return e.vm, ErrSaveInProgress
	}
	if !e.vm.State.editable() {
		defer e.mu.Unlock()
		return e.vm, ErrNotReady
	}
	mode, name := e.vm.Mode, e.vm.Name
	if mode == ModeCreate {
		defer e.mu.Unlock()
		views := make([]ViewSelection, 0, len(e.vm.Views))
		for _, view := range e.vm.Views {
			views = append(views, ViewSelection{View: view.View})
		}
		e.vm = ViewModel{
			State: StateReady,
			Mode:  ModeCreate,
			Views: views,
			Form:  Rebuild(views, e.services, nil, nil),
		}
		return e.vm, nil
	}
	e.mu.Unlock()

	return e.Load(ctx, name)
}

// Save validates the form and creates or updates the remote cluster. Only one save can be in
// flight, a concurrent call returns ErrSaveInProgress without reaching the backend. Observers
// registered with OnInstanceSaved are notified after a successful save.
func (e *Editor) Save(ctx context.Context) (ViewModel, error) {
	e.mu.Lock()
	if e.saving {
		defer e.mu.Unlock()
		return e.vm, ErrSaveInProgress
	}
	if !e.vm.State.editable() {
		defer e.mu.Unlock()
		return e.vm, ErrNotReady
	}
	if e.vm.Locked {
		defer e.mu.Unlock()
		return e.vm, ErrLocked
	}

	vm := e.vm
	vm.Submitted = true
	err := vm.Form.Validate(vm.Name)
	var cluster model.RemoteCluster
	if err == nil {
		cluster, err = ToWireInstance(vm.Name, vm.Form)
	}
	if err != nil {
		vm.Err = err
		e.vm = vm
		e.mu.Unlock()
		return vm, err
	}

	e.saving = true
	vm.State = StateSaving
	vm.Err = nil
	e.vm = vm
	update := vm.Mode == ModeEdit
	e.mu.Unlock()

	saved, err := e.backend.SaveRemoteCluster(ctx, cluster, update)

	e.mu.Lock()
	e.saving = false
	vm = e.vm
	if err != nil {
		saveErr := &SaveError{Title: titleSave, Message: err.Error(), err: err}
		e.alerter.Error(saveErr.Title, saveErr.Message)
		vm.State = StateSaveFailed
		vm.Err = saveErr
		e.vm = vm
		e.mu.Unlock()
		return vm, saveErr
	}

	e.alerter.Success("Created View Instance " + saved.Name)
	vm.State = StateSaved
	vm.Mode = ModeEdit
	vm.Locked = true
	vm.Name = saved.Name
	vm.Dirty = false
	vm.Err = nil
	e.vm = vm
	observers := make([]func(model.RemoteCluster), 0, len(e.observers))
	for _, id := range slices.Sorted(maps.Keys(e.observers)) {
		observers = append(observers, e.observers[id])
	}
	e.mu.Unlock()

	for _, observer := range observers {
		observer(saved)
	}
	return vm, nil
}

// CanLeave tells whether the user may navigate away from the form. The user is prompted if there
// are unsaved changes: saving allows leaving once the save succeeded, discarding drops the changes
// and cancelling keeps the user on the form.
func (e *Editor) CanLeave(ctx context.Context) (bool, error) {
	if !e.Model().Dirty {
		return true, nil
	}

	choice, err := e.prompter.Prompt(ctx)
	if err != nil {
		return false, err
	}

	switch choice {
	case ChoiceSave:
		_, err := e.Save(ctx)
		if err != nil {
			return false, err
		}
		return true, nil
	case ChoiceDiscard:
		e.mu.Lock()
		vm := e.vm
		vm.Dirty = false
		e.vm = vm
		e.mu.Unlock()
		return true, nil
	default:
		return false, nil
	}
}

// OnInstanceSaved registers handler to be called with every saved remote cluster. The returned
// function removes the handler.
func (e *Editor) OnInstanceSaved(handler func(model.RemoteCluster)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.observer
	e.observer++
	e.observers[id] = handler

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.observers, id)
	}
}

// List returns all remote clusters. A failure is alerted and returned as a LoadError.
func (e *Editor) List(ctx context.Context) ([]model.RemoteCluster, error) {
	clusters, err := e.backend.ListRemoteClusters(ctx)
	if err != nil {
		loadErr := newLoadError("remote clusters", titleLoadViews, err)
		e.alerter.Error(loadErr.Title, loadErr.Message)
		return nil, loadErr
	}
	return clusters, nil
}

func newLoadError(resource, title string, err error) *LoadError {
	return &LoadError{Resource: resource, Title: title, Message: err.Error(), err: err}
}

type logAlerter struct {
	logger *slog.Logger
}

func (a logAlerter) Success(title string) {
	a.logger.Info(title)
}

func (a logAlerter) Error(title, message string) {
	a.logger.Error(title, "error", message)
}
