package conflict

import (
	"bytes"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/models"
)

// Priorities maps an actor id to its priority for StrategyUserPriority.
// Actors missing from the table have priority 0.
type Priorities map[uuid.UUID]int

// resolverFunc разрешает конфликт одного типа. Возвращает false,
// если стратегия не применима или не дает однозначного результата.
type resolverFunc func(c models.Conflict, strategy models.ResolutionStrategy, priorities Priorities) (kept []models.OperationRecord, ok bool)

// resolvers - таблица диспетчеризации по типу конфликта. Новый класс
// конфликтов добавляется новой записью.
var resolvers = map[models.ConflictType]resolverFunc{
	models.PropertyConflict:     resolveProperty,
	models.DeleteModifyConflict: resolveDeleteModify,
	models.TransformConflict:    resolveTransform,
}

// Resolve builds a resolution for c under strategy. It never fails: an
// unknown conflict type, an unsupported strategy or an unresolved tie
// yields a StrategyManual resolution that keeps every operation and
// requires notification.
func Resolve(c models.Conflict, strategy models.ResolutionStrategy, priorities Priorities, now time.Time) models.ConflictResolution {
	if len(c.Operations) == 0 {
		return buildResolution(c, models.StrategyManual, nil, true, now)
	}
	if fn, known := resolvers[c.Type]; known {
		if kept, ok := fn(c, strategy, priorities); ok {
			return buildResolution(c, strategy, kept, false, now)
		}
	}
	return buildResolution(c, models.StrategyManual, c.Operations, true, now)
}

// ResolveBySide keeps the operations accepted by keep and discards the rest.
// The merge engine uses it for models.StrategyOurs and models.StrategyTheirs.
func ResolveBySide(c models.Conflict, strategy models.ResolutionStrategy, keep func(models.OperationRecord) bool, now time.Time) models.ConflictResolution {
	return buildResolution(c, strategy, filter(c.Operations, keep), false, now)
}

func buildResolution(
	c models.Conflict,
	strategy models.ResolutionStrategy,
	kept []models.OperationRecord,
	notify bool,
	now time.Time,
) models.ConflictResolution {
	keptIDs := make(map[models.OperationID]struct{}, len(kept))
	resolved := make(models.Operations, 0, len(kept))
	for _, rec := range sortByTimestamp(kept) {
		keptIDs[rec.ID] = struct{}{}
		resolved = append(resolved, rec.Op)
	}

	discarded := make([]models.OperationID, 0)
	for _, rec := range sortByTimestamp(c.Operations) {
		if _, ok := keptIDs[rec.ID]; !ok {
			discarded = append(discarded, rec.ID)
		}
	}

	return models.ConflictResolution{
		ConflictID:           c.ID,
		Strategy:             strategy,
		ResolvedOperations:   resolved,
		DiscardedOperations:  discarded,
		RequiresNotification: notify,
		ResolvedAt:           now,
	}
}

func resolveProperty(c models.Conflict, strategy models.ResolutionStrategy, priorities Priorities) ([]models.OperationRecord, bool) {
	switch strategy {
	case models.StrategyLastWriteWins:
		return []models.OperationRecord{latest(c.Operations)}, true
	case models.StrategyFirstWriteWins:
		return []models.OperationRecord{earliest(c.Operations)}, true
	case models.StrategyUserPriority:
		return byPriority(c.Operations, priorities)
	case models.StrategyCRDT:
		// свойства сходятся по LWW при применении, поэтому ничего не отбрасываем
		return c.Operations, true
	}
	return nil, false
}

func resolveDeleteModify(c models.Conflict, strategy models.ResolutionStrategy, _ Priorities) ([]models.OperationRecord, bool) {
	switch strategy {
	case models.StrategyLastWriteWins:
		// побеждает сторона (удаление или изменение) последней операции
		deleteWins := models.IsDelete(latest(c.Operations).Op)
		return filter(c.Operations, func(rec models.OperationRecord) bool {
			return models.IsDelete(rec.Op) == deleteWins
		}), true
	case models.StrategyCRDT:
		// tombstone доминирует над параллельным изменением
		return filter(c.Operations, func(rec models.OperationRecord) bool {
			return models.IsDelete(rec.Op)
		}), true
	}
	return nil, false
}

func resolveTransform(c models.Conflict, strategy models.ResolutionStrategy, _ Priorities) ([]models.OperationRecord, bool) {
	switch strategy {
	case models.StrategyMerge, models.StrategyCRDT:
		// композиция в порядке timestamp выполняется потребителем
		return c.Operations, true
	case models.StrategyLastWriteWins:
		return []models.OperationRecord{latest(c.Operations)}, true
	}
	return nil, false
}

// byPriority оставляет последнюю операцию автора с наибольшим приоритетом.
// Ничья между разными авторами не разрешается.
func byPriority(records []models.OperationRecord, priorities Priorities) ([]models.OperationRecord, bool) {
	best := 0
	var winners []models.OperationRecord
	for _, rec := range records {
		p := priorities[rec.Actor]
		switch {
		case winners == nil || p > best:
			best = p
			winners = []models.OperationRecord{rec}
		case p == best:
			winners = append(winners, rec)
		}
	}

	actor := winners[0].Actor
	for _, rec := range winners[1:] {
		if rec.Actor != actor {
			return nil, false
		}
	}
	return []models.OperationRecord{latest(winners)}, true
}

// compareRecords задает полный порядок: timestamp, затем id операции.
func compareRecords(a, b models.OperationRecord) int {
	if c := a.Op.Stamp().Compare(b.Op.Stamp()); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

func latest(records []models.OperationRecord) models.OperationRecord {
	return slices.MaxFunc(records, compareRecords)
}

func earliest(records []models.OperationRecord) models.OperationRecord {
	return slices.MinFunc(records, compareRecords)
}

func sortByTimestamp(records []models.OperationRecord) []models.OperationRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, compareRecords)
	return sorted
}

func filter(records []models.OperationRecord, keep func(models.OperationRecord) bool) []models.OperationRecord {
	var out []models.OperationRecord
	for _, rec := range records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}
