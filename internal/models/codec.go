package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/crdt"
)

// operationEnvelope - формат операции в JSON: общий заголовок плюс
// поля конкретного варианта.
type operationEnvelope struct {
	InitialState map[string]any        `json:"initial_state,omitempty"`
	Value        any                   `json:"value,omitempty"`
	Matrix       *[6]float64           `json:"matrix,omitempty"`
	Kind         OperationKind         `json:"kind"`
	Property     string                `json:"property,omitempty"`
	EntityID     uuid.UUID             `json:"entity_id"`
	Timestamp    crdt.LamportTimestamp `json:"timestamp"`
}

// MarshalOperation encodes op as a tagged JSON object.
func MarshalOperation(op Operation) ([]byte, error) {
	env := operationEnvelope{
		Kind:      op.Kind(),
		EntityID:  op.Entity(),
		Timestamp: op.Stamp(),
	}

	switch o := op.(type) {
	case AddEntity:
		env.InitialState = o.InitialState
	case UpdateProperty:
		env.Property = o.Property
		env.Value = o.Value
	case DeleteEntity:
	case TransformEntity:
		matrix := o.Matrix
		env.Matrix = &matrix
	default:
		return nil, ErrUnknownOperation
	}

	return json.Marshal(env)
}

// UnmarshalOperation decodes a tagged JSON object produced by MarshalOperation.
func UnmarshalOperation(data []byte) (Operation, error) {
	var env operationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal operation: %w", err)
	}

	if env.EntityID == uuid.Nil {
		return nil, fmt.Errorf("%w: entity_id is required", ErrInvalidOperation)
	}

	switch env.Kind {
	case KindAddEntity:
		return AddEntity{EntityID: env.EntityID, InitialState: env.InitialState, Timestamp: env.Timestamp}, nil
	case KindUpdateProperty:
		if env.Property == "" {
			return nil, fmt.Errorf("%w: property is required", ErrInvalidOperation)
		}
		return UpdateProperty{EntityID: env.EntityID, Property: env.Property, Value: env.Value, Timestamp: env.Timestamp}, nil
	case KindDeleteEntity:
		return DeleteEntity{EntityID: env.EntityID, Timestamp: env.Timestamp}, nil
	case KindTransformEntity:
		if env.Matrix == nil {
			return nil, fmt.Errorf("%w: matrix is required", ErrInvalidOperation)
		}
		return TransformEntity{EntityID: env.EntityID, Matrix: *env.Matrix, Timestamp: env.Timestamp}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, env.Kind)
	}
}

// Operations is an ordered operation list with a JSON encoding.
type Operations []Operation

// MarshalJSON encodes every operation as a tagged object.
func (ops Operations) MarshalJSON() ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(ops))
	for i, op := range ops {
		data, err := MarshalOperation(op)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		raw = append(raw, data)
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes a list of tagged objects.
func (ops *Operations) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal operations: %w", err)
	}

	result := make(Operations, 0, len(raw))
	for i, item := range raw {
		op, err := UnmarshalOperation(item)
		if err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
		result = append(result, op)
	}
	*ops = result
	return nil
}

type operationRecordJSON struct {
	Operation json.RawMessage `json:"operation"`
	ID        OperationID     `json:"id"`
	Actor     uuid.UUID       `json:"actor"`
}

// MarshalJSON encodes the record with its operation envelope.
func (r OperationRecord) MarshalJSON() ([]byte, error) {
	op, err := MarshalOperation(r.Op)
	if err != nil {
		return nil, err
	}
	return json.Marshal(operationRecordJSON{Operation: op, ID: r.ID, Actor: r.Actor})
}

// UnmarshalJSON decodes a record produced by MarshalJSON.
func (r *OperationRecord) UnmarshalJSON(data []byte) error {
	var aux operationRecordJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("failed to unmarshal operation record: %w", err)
	}
	op, err := UnmarshalOperation(aux.Operation)
	if err != nil {
		return err
	}
	*r = OperationRecord{Op: op, ID: aux.ID, Actor: aux.Actor}
	return nil
}
