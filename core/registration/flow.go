package registration

import (
	"context"

	"github.com/pkg/errors"

	"github.com/educonnectt/web/core"
	"github.com/educonnectt/web/core/session"
)

// FlowState tracks the curriculum -> package -> checkout walk for one
// registration screen instance.
type FlowState string

const (
	StateSelectingCurriculum FlowState = "selectingCurriculum"
	StateSelectingPackage    FlowState = "selectingPackage"
	StateComplete            FlowState = "complete"
)

var (
	ErrUnknownCurriculum = errors.New("unknown curriculum")
	ErrUnknownPackage    = errors.New("unknown package")
	ErrBadTransition     = errors.New("selection not allowed in current step")
)

type (
	// Flow converts a sequence of user picks into a well-formed Draft,
	// branching on the visitor's declared role. Only students pick a
	// package; every other role completes on curriculum selection. All
	// transitions are synchronous and local; the flow itself never talks
	// to the backend.
	Flow struct {
		catalog   Catalog
		store     core.Store
		visitorID string
		rawRole   string
		role      session.Role
		state     FlowState
		current   *Curriculum
	}

	// Outcome of a completing transition: the persisted draft plus the
	// signup path to advance to. The path carries the raw role value
	// verbatim, recognized or not.
	Outcome struct {
		Draft    Draft
		NextPath string
	}
)

func NewFlow(catalog Catalog, store core.Store, visitorID, rawRole string) *Flow {
	return &Flow{
		catalog:   catalog,
		store:     store,
		visitorID: visitorID,
		rawRole:   core.CleanString(rawRole),
		role:      session.ParseRole(rawRole),
		state:     StateSelectingCurriculum,
	}
}

func (f *Flow) State() FlowState   { return f.state }
func (f *Flow) Role() session.Role { return f.role }

// RoleLabel is the display heading for the visitor's declared role.
func (f *Flow) RoleLabel() string { return session.DisplayLabel(f.rawRole) }

// Packages lists the selected curriculum's package catalog; nil unless a
// student has picked a curriculum.
func (f *Flow) Packages() []Package {
	if f.state != StateSelectingPackage || f.current == nil {
		return nil
	}
	return f.current.Packages
}

// SelectCurriculum advances the flow. Students move on to the package grid
// with nothing persisted yet; all other roles complete immediately with a
// package-less draft persisted before the outcome is returned.
func (f *Flow) SelectCurriculum(ctx context.Context, name string) (*Outcome, error) {
	if f.state != StateSelectingCurriculum {
		return nil, ErrBadTransition
	}
	cur, ok := f.catalog.Get(name)
	if !ok {
		return nil, ErrUnknownCurriculum
	}

	if f.role == session.RoleStudent {
		f.current = &cur
		f.state = StateSelectingPackage
		return nil, nil
	}

	draft := NewTeacherDraft(cur)
	if err := draft.Save(ctx, f.store, f.visitorID); err != nil {
		return nil, err
	}
	f.state = StateComplete
	return &Outcome{Draft: draft, NextPath: f.authFormPath()}, nil
}

// SelectPackage completes a student flow: it derives the package key and
// default grade, persists the draft, and hands back the signup path.
func (f *Flow) SelectPackage(ctx context.Context, code string) (*Outcome, error) {
	if f.state != StateSelectingPackage || f.current == nil {
		return nil, ErrBadTransition
	}
	pkg, ok := f.current.Package(code)
	if !ok {
		return nil, ErrUnknownPackage
	}

	draft := NewStudentDraft(*f.current, pkg)
	if err := draft.Save(ctx, f.store, f.visitorID); err != nil {
		return nil, err
	}
	f.state = StateComplete
	return &Outcome{Draft: draft, NextPath: f.authFormPath()}, nil
}

// Back returns from the package grid to the curriculum grid, discarding the
// in-progress pick. A draft persisted by a previously completed flow stays
// untouched.
func (f *Flow) Back() {
	if f.state == StateSelectingPackage {
		f.current = nil
		f.state = StateSelectingCurriculum
	}
}

func (f *Flow) authFormPath() string {
	return "/auth-form/" + f.rawRole
}
