package models

import (
	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/crdt"
)

// OperationKind identifies an Operation variant on the wire.
type OperationKind string

// Поддерживаемые типы операций
const (
	KindAddEntity       OperationKind = "add_entity"
	KindUpdateProperty  OperationKind = "update_property"
	KindDeleteEntity    OperationKind = "delete_entity"
	KindTransformEntity OperationKind = "transform_entity"
)

// TransformProperty is the pseudo-property name under which geometric
// transforms are reported in diffs.
const TransformProperty = "transform"

// Operation is a single immutable mutation of the drawing.
//
// The set of variants is closed: AddEntity, UpdateProperty, DeleteEntity
// and TransformEntity. Consumers switch over the concrete types and treat
// anything else as ErrUnknownOperation.
type Operation interface {
	// Entity returns the id of the entity the operation targets.
	Entity() uuid.UUID
	// Stamp returns the Lamport timestamp of the operation.
	Stamp() crdt.LamportTimestamp
	// Kind returns the wire name of the variant.
	Kind() OperationKind

	isOperation()
}

// AddEntity создает сущность с начальным набором свойств.
type AddEntity struct {
	InitialState map[string]any
	EntityID     uuid.UUID
	Timestamp    crdt.LamportTimestamp
}

// UpdateProperty записывает значение одного свойства сущности.
type UpdateProperty struct {
	Value     any
	Property  string
	EntityID  uuid.UUID
	Timestamp crdt.LamportTimestamp
}

// DeleteEntity удаляет сущность (tombstone).
type DeleteEntity struct {
	EntityID  uuid.UUID
	Timestamp crdt.LamportTimestamp
}

// TransformEntity применяет к сущности аффинное преобразование
// [a b c d e f] (x' = a*x + c*y + e, y' = b*x + d*y + f).
type TransformEntity struct {
	Matrix    [6]float64
	EntityID  uuid.UUID
	Timestamp crdt.LamportTimestamp
}

func (o AddEntity) Entity() uuid.UUID       { return o.EntityID }
func (o UpdateProperty) Entity() uuid.UUID  { return o.EntityID }
func (o DeleteEntity) Entity() uuid.UUID    { return o.EntityID }
func (o TransformEntity) Entity() uuid.UUID { return o.EntityID }

func (o AddEntity) Stamp() crdt.LamportTimestamp       { return o.Timestamp }
func (o UpdateProperty) Stamp() crdt.LamportTimestamp  { return o.Timestamp }
func (o DeleteEntity) Stamp() crdt.LamportTimestamp    { return o.Timestamp }
func (o TransformEntity) Stamp() crdt.LamportTimestamp { return o.Timestamp }

func (AddEntity) Kind() OperationKind       { return KindAddEntity }
func (UpdateProperty) Kind() OperationKind  { return KindUpdateProperty }
func (DeleteEntity) Kind() OperationKind    { return KindDeleteEntity }
func (TransformEntity) Kind() OperationKind { return KindTransformEntity }

func (AddEntity) isOperation()       {}
func (UpdateProperty) isOperation()  {}
func (DeleteEntity) isOperation()    {}
func (TransformEntity) isOperation() {}

// Apply применяет операцию к LWW-хранилищу сущностей.
func Apply(store *crdt.EntityStore, op Operation) error {
	switch o := op.(type) {
	case AddEntity:
		store.Add(o.EntityID, o.InitialState, o.Timestamp)
	case UpdateProperty:
		store.Set(o.EntityID, o.Property, o.Value, o.Timestamp)
	case DeleteEntity:
		store.Remove(o.EntityID, o.Timestamp)
	case TransformEntity:
		store.Transform(o.EntityID, o.Matrix, o.Timestamp)
	default:
		return ErrUnknownOperation
	}
	return nil
}

// IsDelete reports whether op is a DeleteEntity.
func IsDelete(op Operation) bool {
	_, ok := op.(DeleteEntity)
	return ok
}

// OperationRecord is an operation together with its id and author,
// the unit the conflict detector works on.
type OperationRecord struct {
	Op    Operation   `json:"-"`
	ID    OperationID `json:"id"`
	Actor uuid.UUID   `json:"actor"`
}

// NewRecord оборачивает операцию в запись; автор берется из timestamp.
func NewRecord(op Operation) OperationRecord {
	return OperationRecord{
		ID:    IDOf(op),
		Op:    op,
		Actor: op.Stamp().ActorID,
	}
}

// Complete заполняет пустые ID и Actor так же, как NewRecord,
// и сохраняет заданные вызывающим значения.
func (r OperationRecord) Complete() OperationRecord {
	if r.ID == uuid.Nil {
		r.ID = IDOf(r.Op)
	}
	if r.Actor == uuid.Nil {
		r.Actor = r.Op.Stamp().ActorID
	}
	return r
}

// Records оборачивает список операций в записи, сохраняя порядок.
func Records(ops []Operation) []OperationRecord {
	records := make([]OperationRecord, 0, len(ops))
	for _, op := range ops {
		records = append(records, NewRecord(op))
	}
	return records
}
