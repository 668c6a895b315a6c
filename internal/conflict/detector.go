package conflict

import (
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/models"
)

// Detect находит конфликты в пакете параллельных операций.
//
// Операции группируются по сущности. Для сущности с несколькими операциями:
//   - удаление вместе с любым другим изменением дает DeleteModifyConflict (High);
//   - иначе несколько UpdateProperty одного свойства дают PropertyConflict (Medium)
//     на каждое такое свойство;
//   - несколько TransformEntity дают TransformConflict (Low).
//
// Изменения разных свойств и единственная операция конфликтом не считаются.
// Detect - чистая функция; порядок результата определяется порядком
// первого появления сущности и свойства во входных данных.
func Detect(records []models.OperationRecord, now time.Time) []models.Conflict {
	groups := make(map[uuid.UUID][]models.OperationRecord)
	var order []uuid.UUID
	for _, rec := range records {
		id := rec.Op.Entity()
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], rec)
	}

	var conflicts []models.Conflict
	for _, entityID := range order {
		group := groups[entityID]
		if len(group) < 2 {
			continue
		}
		conflicts = append(conflicts, classify(entityID, group, now)...)
	}
	return conflicts
}

// classify определяет конфликты одной сущности.
func classify(entityID uuid.UUID, group []models.OperationRecord, now time.Time) []models.Conflict {
	var (
		hasDelete, hasOther bool
		properties          = make(map[string][]models.OperationRecord)
		propertyOrder       []string
		transforms          []models.OperationRecord
	)

	for _, rec := range group {
		switch op := rec.Op.(type) {
		case models.DeleteEntity:
			hasDelete = true
		case models.UpdateProperty:
			hasOther = true
			if _, seen := properties[op.Property]; !seen {
				propertyOrder = append(propertyOrder, op.Property)
			}
			properties[op.Property] = append(properties[op.Property], rec)
		case models.TransformEntity:
			hasOther = true
			transforms = append(transforms, rec)
		case models.AddEntity:
			hasOther = true
		}
	}

	// удаление против изменения поглощает остальные конфликты сущности
	if hasDelete && hasOther {
		return []models.Conflict{newConflict(models.DeleteModifyConflict, models.SeverityHigh, entityID, group, now)}
	}

	var conflicts []models.Conflict
	for _, property := range propertyOrder {
		if recs := properties[property]; len(recs) > 1 {
			conflicts = append(conflicts, newConflict(models.PropertyConflict, models.SeverityMedium, entityID, recs, now))
		}
	}
	if len(transforms) > 1 {
		conflicts = append(conflicts, newConflict(models.TransformConflict, models.SeverityLow, entityID, transforms, now))
	}
	return conflicts
}

func newConflict(
	conflictType models.ConflictType,
	severity models.Severity,
	entityID uuid.UUID,
	records []models.OperationRecord,
	now time.Time,
) models.Conflict {
	ops := make([]models.OperationRecord, len(records))
	copy(ops, records)

	return models.Conflict{
		ID:             uuid.New(),
		Type:           conflictType,
		Severity:       severity,
		EntityIDs:      []uuid.UUID{entityID},
		Operations:     ops,
		AutoResolvable: severity == models.SeverityLow,
		DetectedAt:     now,
	}
}
