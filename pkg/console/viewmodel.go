package console

import "slices"

type State int

const (
	StateLoading State = iota
	StateLoadFailed
	StateReady
	StateSaving
	StateSaved
	StateSaveFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoadFailed:
		return "load failed"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	case StateSaveFailed:
		return "save failed"
	}
	return "unknown"
}

// editable states accept actions changing the form.
func (s State) editable() bool {
	return s == StateReady || s == StateSaved || s == StateSaveFailed
}

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// ViewModel is a snapshot of the editor. The editor never changes a ViewModel it handed out, every
// action results in a new one.
type ViewModel struct {
	State State
	Mode  Mode
	// Locked is only true in edit mode until editing is toggled on.
	Locked    bool
	Name      string
	Views     []ViewSelection
	Form      Form
	Dirty     bool
	Submitted bool
	// Err is the error of the last action which failed, if any.
	Err error
}

// CheckedViews returns the names of the selected views.
func (vm ViewModel) CheckedViews() []string {
	var names []string
	for _, view := range vm.Views {
		if view.Checked {
			names = append(names, view.Name)
		}
	}
	return names
}

func (vm ViewModel) withView(name string) (ViewModel, bool) {
	i := slices.IndexFunc(vm.Views, func(v ViewSelection) bool {
		return v.Name == name
	})
	if i < 0 {
		return vm, false
	}

	views := slices.Clone(vm.Views)
	views[i].Checked = !views[i].Checked
	vm.Views = views
	return vm, true
}
