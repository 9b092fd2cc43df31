package permission

import "encoding/json"

// Record maps operation names to their allowed flag for one (user, entity)
// pair. The zero value means no permissions.
type Record map[string]bool

// Decision is the outcome of a permission check. RecordFound distinguishes
// "no record exists for this user and entity" from "a record exists but
// granted nothing"; the two are handled differently by the gate.
type Decision struct {
	Granted     Record
	RecordFound bool
}

// Allowed reports whether the decision granted at least one operation.
func (d Decision) Allowed() bool {
	return len(d.Granted) > 0
}

// Grant computes the intersection of the record with the requested
// operations. Semantics are OR, not AND: each requested operation marked
// truthy in the record is included, and any non-empty result passes the
// gate. An empty ops list always grants nothing.
func (r Record) Grant(ops []string) Record {
	granted := Record{}
	for _, op := range ops {
		if r[op] {
			granted[op] = true
		}
	}
	return granted
}

// decodeRecord parses the JSON permission record stored in the cache.
// Values are coerced by truthiness so records written as {"view": 1} behave
// the same as {"view": true}.
func decodeRecord(data []byte) (Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	record := make(Record, len(raw))
	for op, v := range raw {
		record[op] = truthy(v)
	}
	return record, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case nil:
		return false
	default:
		return true
	}
}
