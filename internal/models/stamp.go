package models

import "github.com/iudanet/gophdraw/internal/crdt"

// StampOperations проставляет timestamp операциям без него (Counter == 0)
// очередными значениями clock. Операции с timestamp сначала продвигают
// часы, поэтому новые значения всегда позже уже присвоенных.
// Исходный срез не изменяется.
func StampOperations(clock *crdt.LamportClock, ops []Operation) []Operation {
	for _, op := range ops {
		if ts := op.Stamp(); ts.Counter != 0 {
			clock.Update(ts)
		}
	}

	result := make([]Operation, len(ops))
	for i, op := range ops {
		if op.Stamp().Counter != 0 {
			result[i] = op
			continue
		}
		result[i] = withStamp(op, clock.Tick())
	}
	return result
}

func withStamp(op Operation, ts crdt.LamportTimestamp) Operation {
	switch o := op.(type) {
	case AddEntity:
		o.Timestamp = ts
		return o
	case UpdateProperty:
		o.Timestamp = ts
		return o
	case DeleteEntity:
		o.Timestamp = ts
		return o
	case TransformEntity:
		o.Timestamp = ts
		return o
	}
	return op
}
