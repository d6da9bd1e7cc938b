package capture

import (
	"encoding/json"

	"github.com/google/uuid"
)

// LeafResult is the coerced reading of one included unit.
type LeafResult struct {
	UnitID uuid.UUID
	Values map[string]any
}

// ParentResult groups the included units of one tank or dispenser.
type ParentResult struct {
	ParentID uuid.UUID
	Leaves   []LeafResult
}

// TestPayload is the nested result object handed to the sink when a test
// sub-form saves. Its wire form follows the test's scope:
//
//	{ "work_order_id": ..., "dispensers": [ { "dispenser_id": ..., "hose_results": [...] } ], "tags": [...] }
//
// with tanks/compartment_results for tank-scoped tests. Self-scoped tests
// carry their reading fields flat on the parent entry.
type TestPayload struct {
	WorkOrderID uuid.UUID
	Code        TestCode
	Parents     []ParentResult
	Tags        []string
}

func (p TestPayload) MarshalJSON() ([]byte, error) {
	def, _ := Lookup(p.Code)

	parentKey, parentIDKey := "dispensers", "dispenser_id"
	leafListKey, leafIDKey := "hose_results", "hose_id"
	if def.Scope == ScopeTank {
		parentKey, parentIDKey = "tanks", "tank_id"
		leafListKey, leafIDKey = "compartment_results", "compartment_id"
	}

	entries := make([]map[string]any, 0, len(p.Parents))
	for _, parent := range p.Parents {
		entry := map[string]any{parentIDKey: parent.ParentID}
		if def.SelfScoped {
			// Exactly one leaf, the parent itself; flatten its values.
			for _, leaf := range parent.Leaves {
				for k, v := range leaf.Values {
					entry[k] = v
				}
			}
		} else {
			results := make([]map[string]any, 0, len(parent.Leaves))
			for _, leaf := range parent.Leaves {
				row := map[string]any{leafIDKey: leaf.UnitID}
				for k, v := range leaf.Values {
					row[k] = v
				}
				results = append(results, row)
			}
			entry[leafListKey] = results
		}
		entries = append(entries, entry)
	}

	out := map[string]any{
		"work_order_id": p.WorkOrderID,
		parentKey:       entries,
	}
	if def.CollectTags {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		out["tags"] = tags
	}
	return json.Marshal(out)
}
