package models

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// OperationID identifies an operation. It is derived from the operation's
// content, so every replica computes the same id for the same operation.
type OperationID = uuid.UUID

// operationNamespace - пространство имен для name-based UUID операций.
var operationNamespace = uuid.MustParse("6f1c2a4e-8d3b-4f0a-9c57-2e6b1d9a7f30")

// IDOf returns the content-derived id of op: a version 5 style UUID
// computed with BLAKE2b-256 over the canonical JSON encoding.
func IDOf(op Operation) OperationID {
	data, err := MarshalOperation(op)
	if err != nil {
		// значения, которые не кодируются в JSON, все равно дают стабильный id
		data = fmt.Appendf(nil, "%T%+v", op, op)
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		// New256 возвращает ошибку только для слишком длинного ключа
		panic(fmt.Sprintf("blake2b: %v", err))
	}
	return uuid.NewHash(h, operationNamespace, data, 5)
}
