package vcs

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/iudanet/gophdraw/internal/conflict"
	"github.com/iudanet/gophdraw/internal/metrics"
	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/validation"
)

// OperationPair - пара конфликтующих операций: из текущей ветки и из сливаемой.
type OperationPair struct {
	Ours   models.OperationID `json:"ours"`
	Theirs models.OperationID `json:"theirs"`
}

// MergeResult describes the outcome of Merge.
type MergeResult struct {
	Resolutions           []models.ConflictResolution `json:"resolutions"`
	ConflictingOperations []OperationPair             `json:"conflicting_operations"`
	MergedOperations      models.Operations           `json:"merged_operations"`
	MergeVersion          uuid.UUID                   `json:"merge_version"`
	Conflicts             int                         `json:"conflicts"`
	FastForward           bool                        `json:"fast_forward"`
	UpToDate              bool                        `json:"up_to_date"`
}

// side - битовая маска веток, в которых встречается операция.
type side uint8

const (
	sideOurs side = 1 << iota
	sideTheirs
)

// mergePlan - снимок графа, прочитанный под блокировкой чтения.
type mergePlan struct {
	oursVersions   []*models.Version
	theirsVersions []*models.Version
	target         string
	source         string
	ours           uuid.UUID
	theirs         uuid.UUID
	base           uuid.UUID
	fastForward    bool
	upToDate       bool
}

type mergeOutcome struct {
	conflicts   []models.Conflict
	resolutions []models.ConflictResolution
	pairs       []OperationPair
	merged      models.Operations
	discarded   []models.OperationID
}

// Merge сливает ветку source в текущую ветку.
//
// Если голова текущей ветки - предок головы source, выполняется перемотка
// (fast-forward). Иначе операции обеих веток после общего предка проходят
// через детектор конфликтов, каждый конфликт между ветками разрешается
// стратегией strategy, и создается версия слияния с родителями
// [голова текущей ветки, голова source]. Конфликты, требующие ручного
// разрешения, не прерывают слияние: они остаются ожидающими в менеджере
// конфликтов. Пустая strategy означает стратегию по умолчанию менеджера.
func (vc *VersionControl) Merge(source, author string, strategy models.ResolutionStrategy) (*MergeResult, error) {
	if err := validation.ValidateAuthor(author); err != nil {
		return nil, err
	}
	if strategy == "" {
		strategy = vc.conflicts.Config().DefaultStrategy
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	plan, err := vc.planMerge(source)
	if err != nil {
		return nil, err
	}

	switch {
	case plan.fastForward:
		return vc.fastForward(plan)
	case plan.upToDate:
		vc.metrics.Merge(metrics.MergeUpToDate)
		vc.logger.Info("Branch already up to date",
			"branch", plan.target,
			"source", source)
		return &MergeResult{MergeVersion: plan.ours, UpToDate: true}, nil
	}

	outcome := vc.resolveMerge(plan, strategy)

	version := &models.Version{
		ID:         uuid.New(),
		Parents:    []uuid.UUID{plan.ours, plan.theirs},
		Author:     author,
		Message:    fmt.Sprintf("Merge branch '%s' into %s", source, plan.target),
		Timestamp:  vc.now(),
		Operations: outcome.merged,
		Discarded:  outcome.discarded,
	}
	if err := vc.appendVersion(plan.target, plan.ours, version); err != nil {
		return nil, err
	}

	// конфликты попадают в менеджер только после успешного коммита
	for i, c := range outcome.conflicts {
		if outcome.resolutions[i].RequiresNotification {
			vc.conflicts.Track(c)
			continue
		}
		vc.conflicts.Record(c, outcome.resolutions[i])
	}

	vc.persistVersion(version.ID)
	vc.persistBranch(plan.target)

	vc.metrics.Merge(metrics.MergeThreeWay)
	vc.logger.Info("Branches merged",
		"branch", plan.target,
		"source", source,
		"base", plan.base,
		"version_id", version.ID,
		"strategy", strategy,
		"conflicts", len(outcome.conflicts))

	return &MergeResult{
		MergeVersion:          version.ID,
		Conflicts:             len(outcome.conflicts),
		ConflictingOperations: outcome.pairs,
		MergedOperations:      outcome.merged,
		Resolutions:           outcome.resolutions,
	}, nil
}

func (vc *VersionControl) planMerge(source string) (mergePlan, error) {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	plan := mergePlan{target: vc.current, source: source}
	if source == vc.current {
		return plan, refError(ErrSelfMerge, source)
	}
	src, ok := vc.branches[source]
	if !ok {
		return plan, refError(ErrBranchNotFound, source)
	}
	plan.ours = vc.branches[vc.current].Head
	plan.theirs = src.Head

	ff, err := vc.isAncestor(plan.ours, plan.theirs)
	if err != nil {
		return plan, err
	}
	if ff {
		plan.fastForward = true
		return plan, nil
	}

	upToDate, err := vc.isAncestor(plan.theirs, plan.ours)
	if err != nil {
		return plan, err
	}
	if upToDate {
		plan.upToDate = true
		return plan, nil
	}

	if plan.base, err = vc.mergeBase(plan.ours, plan.theirs); err != nil {
		return plan, err
	}
	if plan.oursVersions, err = vc.rangeVersions(plan.base, plan.ours); err != nil {
		return plan, err
	}
	if plan.theirsVersions, err = vc.rangeVersions(plan.base, plan.theirs); err != nil {
		return plan, err
	}
	return plan, nil
}

func (vc *VersionControl) fastForward(plan mergePlan) (*MergeResult, error) {
	vc.mu.Lock()
	b, ok := vc.branches[plan.target]
	if !ok {
		vc.mu.Unlock()
		return nil, refError(ErrBranchNotFound, plan.target)
	}
	if b.Head != plan.ours {
		vc.mu.Unlock()
		return nil, fmt.Errorf("%w: branch %s is at %s, expected %s",
			models.ErrVersionConflict, plan.target, b.Head, plan.ours)
	}
	b.Head = plan.theirs
	vc.mu.Unlock()

	vc.persistBranch(plan.target)

	vc.metrics.Merge(metrics.MergeFastForward)
	vc.logger.Info("Branch fast-forwarded",
		"branch", plan.target,
		"source", plan.source,
		"from", plan.ours,
		"to", plan.theirs)

	return &MergeResult{MergeVersion: plan.theirs, FastForward: true}, nil
}

// resolveMerge собирает операции обеих веток после общего предка и
// разрешает конфликты между ветками. Конфликты внутри одной ветки -
// последовательные правки, а не параллельные, и не учитываются.
func (vc *VersionControl) resolveMerge(plan mergePlan, strategy models.ResolutionStrategy) mergeOutcome {
	sides := make(map[models.OperationID]side)
	var records []models.OperationRecord
	collect := func(versions []*models.Version, s side) {
		dropped := discardedIn(versions)
		for _, v := range changeVersions(versions) {
			for _, op := range v.Operations {
				rec := models.NewRecord(op)
				if _, skip := dropped[rec.ID]; skip {
					continue
				}
				if _, seen := sides[rec.ID]; !seen {
					records = append(records, rec)
				}
				sides[rec.ID] |= s
			}
		}
	}
	collect(plan.oursVersions, sideOurs)
	collect(plan.theirsVersions, sideTheirs)

	now := vc.now()
	var out mergeOutcome
	discarded := make(map[models.OperationID]struct{})

	for _, c := range conflict.Detect(records, now) {
		ours, theirs := splitBySide(c, sides)
		if len(ours) == 0 || len(theirs) == 0 {
			continue
		}

		var res models.ConflictResolution
		switch strategy {
		case models.StrategyOurs:
			res = conflict.ResolveBySide(c, strategy, onSide(sides, sideOurs), now)
		case models.StrategyTheirs:
			res = conflict.ResolveBySide(c, strategy, onSide(sides, sideTheirs), now)
		default:
			res = vc.conflicts.Resolve(c, strategy)
		}

		out.conflicts = append(out.conflicts, c)
		out.resolutions = append(out.resolutions, res)
		for _, o := range ours {
			for _, t := range theirs {
				out.pairs = append(out.pairs, OperationPair{Ours: o, Theirs: t})
			}
		}
		for _, id := range res.DiscardedOperations {
			discarded[id] = struct{}{}
		}
	}

	for _, rec := range records {
		if _, drop := discarded[rec.ID]; drop {
			out.discarded = append(out.discarded, rec.ID)
			continue
		}
		out.merged = append(out.merged, rec.Op)
	}
	slices.SortStableFunc(out.merged, func(a, b models.Operation) int {
		return a.Stamp().Compare(b.Stamp())
	})
	return out
}

// splitBySide возвращает id операций конфликта, встречающихся только
// в текущей ветке и только в сливаемой.
func splitBySide(c models.Conflict, sides map[models.OperationID]side) (ours, theirs []models.OperationID) {
	for _, rec := range c.Operations {
		switch sides[rec.ID] {
		case sideOurs:
			ours = append(ours, rec.ID)
		case sideTheirs:
			theirs = append(theirs, rec.ID)
		}
	}
	return ours, theirs
}

func onSide(sides map[models.OperationID]side, s side) func(models.OperationRecord) bool {
	return func(rec models.OperationRecord) bool {
		return sides[rec.ID]&s != 0
	}
}

// discardedIn собирает операции, отброшенные слияниями среди versions.
func discardedIn(versions []*models.Version) map[models.OperationID]struct{} {
	set := make(map[models.OperationID]struct{})
	for _, v := range versions {
		for _, id := range v.Discarded {
			set[id] = struct{}{}
		}
	}
	return set
}

// changeVersions отбрасывает версии слияния. Их операции повторяют
// операции версий-предков и не являются новыми изменениями; при повторном
// учете они дали бы ложные конфликты с уже слитыми правками.
func changeVersions(versions []*models.Version) []*models.Version {
	result := make([]*models.Version, 0, len(versions))
	for _, v := range versions {
		if !v.IsMerge() {
			result = append(result, v)
		}
	}
	return result
}
