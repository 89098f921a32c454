package scene

import (
	"github.com/pkg/errors"
)

var (
	ErrSelectionCount = errors.New("invalid number of items selected")
	ErrSelectionType  = errors.New("selected item has wrong type")
	ErrUnknownEntity  = errors.New("no such entity")
)

// Select builds a selection root out of the named top-level entities of m,
// keeping model order. Every name must match at least one entity.
func Select(m *Model, names ...string) (*Selection, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = false
	}

	sel := &Selection{}
	for _, e := range m.Entities {
		name := EntityName(e)
		if _, ok := wanted[name]; ok && name != "" {
			wanted[name] = true
			sel.Entries = append(sel.Entries, e)
		}
	}

	for _, name := range names {
		if !wanted[name] {
			return nil, errors.Wrapf(ErrUnknownEntity, "selecting %q", name)
		}
	}
	return sel, nil
}

// EntityName returns the host name of groups and instances, "" otherwise.
func EntityName(e Entity) string {
	switch e := e.(type) {
	case *Group:
		return e.Name
	case *Instance:
		return e.Name
	case *Definition:
		return e.Name
	}
	return ""
}

// SingleSelection returns the only entry of sel when it has the wanted kind.
func SingleSelection(sel *Selection, kind Kind) (Entity, error) {
	if sel == nil || len(sel.Entries) != 1 {
		count := 0
		if sel != nil {
			count = len(sel.Entries)
		}
		return nil, errors.Wrapf(ErrSelectionCount, "expected exactly one %v, got %d items", kind, count)
	}
	e := sel.Entries[0]
	if e.Kind() != kind {
		return nil, errors.Wrapf(ErrSelectionType, "selected item must be a %v, not %v", kind, e.Kind())
	}
	return e, nil
}

func SetAnimationPath(sel *Selection) error   { return markPath(sel, true) }
func UnsetAnimationPath(sel *Selection) error { return markPath(sel, false) }

func markPath(sel *Selection, value bool) error {
	e, err := SingleSelection(sel, KindGroup)
	if err != nil {
		return err
	}
	e.(*Group).AnimationPath = value
	return nil
}

func SetStartEdge(sel *Selection) error   { return markStart(sel, true) }
func UnsetStartEdge(sel *Selection) error { return markStart(sel, false) }

func markStart(sel *Selection, value bool) error {
	e, err := SingleSelection(sel, KindEdge)
	if err != nil {
		return err
	}
	e.(*Edge).StartEdge = value
	return nil
}
