package registration

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/educonnectt/web/core"
)

// DraftKey is the storage key holding the serialized registration draft.
// The key and the field layout are an interop contract with the signup
// screens that consume the draft; do not rename either.
const DraftKey = "registrationData"

var ErrNoDraft = errors.New("no registration draft")

// Draft is the in-progress registration record carrying curriculum, package
// and grade choices between screens. Field presence varies by the path that
// produced it: student drafts carry package/grade/duration, teacher drafts
// carry an empty packageName and an empty subjects list pending assignment.
type Draft struct {
	Curriculum  string    `json:"curriculum"`
	PackageKey  string    `json:"package,omitempty"`
	PackageName *string   `json:"packageName,omitempty"`
	Grade       string    `json:"grade"`
	Duration    string    `json:"duration,omitempty"`
	Subjects    *[]string `json:"subjects,omitempty"`
}

// NewStudentDraft records a completed curriculum + package pick. The grade
// defaults to the first grade of the curriculum; checkout refines it later.
func NewStudentDraft(cur Curriculum, pkg Package) Draft {
	return Draft{
		Curriculum: cur.Name,
		PackageKey: MakePackageKey(cur.Name, pkg.Code),
		Grade:      cur.DefaultGrade(),
		Duration:   pkg.Duration,
	}
}

// NewTeacherDraft records a curriculum pick for roles that skip package
// selection entirely; subjects await admin assignment.
func NewTeacherDraft(cur Curriculum) Draft {
	empty := ""
	return Draft{
		Curriculum:  cur.Name,
		PackageName: &empty,
		Subjects:    &[]string{},
	}
}

// Save persists the draft synchronously; callers must not navigate away
// before it returns so the next screen can always recover the draft from
// storage, even after a hard reload.
func (d Draft) Save(ctx context.Context, store core.Store, visitorID string) error {
	data, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "marshalling registration draft")
	}
	if err := store.Set(ctx, visitorID, DraftKey, string(data)); err != nil {
		return errors.Wrap(err, "persisting registration draft")
	}
	return nil
}

// LoadDraft recovers the persisted draft; it is the fallback when in-memory
// navigation state was lost.
func LoadDraft(ctx context.Context, store core.Store, visitorID string) (Draft, error) {
	raw, err := store.Get(ctx, visitorID, DraftKey)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return Draft{}, ErrNoDraft
		}
		return Draft{}, errors.Wrap(err, "reading registration draft")
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Draft{}, errors.Wrap(err, "unmarshalling registration draft")
	}
	return d, nil
}

// ClearDraft removes a consumed draft from storage.
func ClearDraft(ctx context.Context, store core.Store, visitorID string) error {
	return store.Delete(ctx, visitorID, DraftKey)
}
