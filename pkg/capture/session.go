package capture

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/edsfield/edsbackend/models"
)

// Leaf is one testable unit inside a parent asset.
type Leaf struct {
	ID       uuid.UUID `json:"id"`
	Label    string    `json:"label"`
	Position int       `json:"position,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
}

// Parent is one tank or dispenser in the enumerated hierarchy.
type Parent struct {
	ID     uuid.UUID `json:"id"`
	Code   string    `json:"code"`
	Leaves []Leaf    `json:"leaves"`
}

// Reading maps a field key to its raw input value.
type Reading map[string]string

// Session is one open test sub-form: the enumerated hierarchy, a reading
// record per leaf and the two exclusion sets. Exclusion never discards
// entered values; restoring a unit brings them back untouched.
type Session struct {
	Def     Definition
	Parents []Parent

	readings        map[uuid.UUID]Reading
	excludedParents map[uuid.UUID]bool
	excludedLeaves  map[uuid.UUID]bool
}

func newSession(def Definition, parents []Parent) *Session {
	if def.SelfScoped {
		normalized := make([]Parent, len(parents))
		for i, p := range parents {
			normalized[i] = Parent{
				ID:     p.ID,
				Code:   p.Code,
				Leaves: []Leaf{{ID: p.ID, Label: p.Code}},
			}
		}
		parents = normalized
	}

	s := &Session{
		Def:             def,
		Parents:         parents,
		readings:        make(map[uuid.UUID]Reading),
		excludedParents: make(map[uuid.UUID]bool),
		excludedLeaves:  make(map[uuid.UUID]bool),
	}
	for _, p := range parents {
		for _, leaf := range p.Leaves {
			r := make(Reading, len(def.Fields))
			for _, f := range def.Fields {
				r[f.Key] = ""
			}
			s.readings[leaf.ID] = r
		}
	}
	return s
}

// SetReading stores one field value for a unit. Values are kept even while
// the unit or its parent is excluded.
func (s *Session) SetReading(unitID uuid.UUID, field, value string) error {
	r, ok := s.readings[unitID]
	if !ok {
		return invalid("unit_id", "unknown unit")
	}
	if _, ok := r[field]; !ok {
		return invalid("field", fmt.Sprintf("no field %q on a %s reading", field, s.Def.Code))
	}
	r[field] = value
	return nil
}

// Reading returns a copy of the unit's current reading record.
func (s *Session) Reading(unitID uuid.UUID) (Reading, bool) {
	r, ok := s.readings[unitID]
	if !ok {
		return nil, false
	}
	out := make(Reading, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out, true
}

func (s *Session) hasParent(id uuid.UUID) bool {
	for _, p := range s.Parents {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Session) hasLeaf(id uuid.UUID) bool {
	for _, p := range s.Parents {
		for _, l := range p.Leaves {
			if l.ID == id {
				return true
			}
		}
	}
	return false
}

// ToggleParentExclusion flips a parent in or out of the run and reports the
// new excluded state.
func (s *Session) ToggleParentExclusion(id uuid.UUID) (bool, error) {
	if !s.hasParent(id) {
		return false, invalid("unit_id", "unknown parent unit")
	}
	if s.excludedParents[id] {
		delete(s.excludedParents, id)
		return false, nil
	}
	s.excludedParents[id] = true
	return true, nil
}

// ToggleLeafExclusion flips a leaf in or out of the run and reports the new
// excluded state.
func (s *Session) ToggleLeafExclusion(id uuid.UUID) (bool, error) {
	if !s.hasLeaf(id) {
		return false, invalid("unit_id", "unknown leaf unit")
	}
	if s.excludedLeaves[id] {
		delete(s.excludedLeaves, id)
		return false, nil
	}
	s.excludedLeaves[id] = true
	return true, nil
}

func (s *Session) ExcludedParents() []uuid.UUID { return keys(s.excludedParents) }
func (s *Session) ExcludedLeaves() []uuid.UUID  { return keys(s.excludedLeaves) }

func keys(m map[uuid.UUID]bool) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}

// included reports whether a leaf takes part in the submission: it is omitted
// when its own id or its parent's id is excluded.
func (s *Session) included(parent Parent, leaf Leaf) bool {
	return !s.excludedParents[parent.ID] && !s.excludedLeaves[leaf.ID]
}

func coerceField(f Field, raw string) (any, error) {
	if raw == "" {
		return nil, fmt.Errorf("%s is empty", f.Key)
	}
	switch f.Kind {
	case FieldTime:
		if _, err := time.Parse("15:04", raw); err != nil {
			return nil, fmt.Errorf("%s is not a valid time", f.Key)
		}
		return raw, nil
	default:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s is not a number", f.Key)
		}
		return v, nil
	}
}

// buildPayload validates every included leaf and assembles the nested result
// payload. All-or-nothing: a single missing or malformed field aborts the
// whole submission with an AggregateError and a zero payload.
func (s *Session) buildPayload(workOrderID uuid.UUID) (TestPayload, error) {
	var (
		parents    []ParentResult
		incomplete []string
		tags       models.TagSet
	)

	for _, p := range s.Parents {
		if s.excludedParents[p.ID] {
			continue
		}
		var leaves []LeafResult
		for _, leaf := range p.Leaves {
			if !s.included(p, leaf) {
				continue
			}
			values := make(map[string]any, len(s.Def.Fields))
			for _, f := range s.Def.Fields {
				v, err := coerceField(f, s.readings[leaf.ID][f.Key])
				if err != nil {
					incomplete = append(incomplete, fmt.Sprintf("%s %s: %v", p.Code, leaf.Label, err))
					continue
				}
				values[f.Key] = v
			}
			leaves = append(leaves, LeafResult{UnitID: leaf.ID, Values: values})
			if s.Def.CollectTags {
				tags.Union(leaf.Tags)
			}
		}
		// A parent with every leaf excluded contributes nothing.
		if len(leaves) > 0 {
			parents = append(parents, ParentResult{ParentID: p.ID, Leaves: leaves})
		}
	}

	if len(incomplete) > 0 {
		return TestPayload{}, &AggregateError{Units: incomplete}
	}

	payload := TestPayload{
		WorkOrderID: workOrderID,
		Code:        s.Def.Code,
		Parents:     parents,
	}
	if s.Def.CollectTags {
		payload.Tags = tags.Values()
	}
	return payload, nil
}
