package crdt

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// EntityState is the materialized state of one drawing entity.
type EntityState struct {
	Properties map[string]any `json:"properties"`
	Transforms [][6]float64   `json:"transforms,omitempty"`
}

// register хранит значение свойства и timestamp последней записи.
type register struct {
	value any
	ts    LamportTimestamp
}

type transform struct {
	matrix [6]float64
	ts     LamportTimestamp
}

type entity struct {
	props      map[string]register
	transforms []transform // упорядочены по timestamp
	tombstone  *LamportTimestamp
}

// EntityStore представляет LWW-хранилище свойств сущностей чертежа.
// Каждое свойство - отдельный Last-Write-Wins регистр, удаление
// оставляет tombstone, который доминирует над любыми изменениями.
// Порядок применения операций не влияет на результат.
type EntityStore struct {
	entities map[uuid.UUID]*entity
	mu       sync.RWMutex
}

// NewEntityStore создает пустое хранилище.
func NewEntityStore() *EntityStore {
	return &EntityStore{
		entities: make(map[uuid.UUID]*entity),
	}
}

func (s *EntityStore) getOrCreate(id uuid.UUID) *entity {
	e, ok := s.entities[id]
	if !ok {
		e = &entity{props: make(map[string]register)}
		s.entities[id] = e
	}
	return e
}

// Add применяет начальное состояние сущности: каждое свойство
// записывается по правилу LWW с timestamp операции.
func (s *EntityStore) Add(id uuid.UUID, state map[string]any, ts LamportTimestamp) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreate(id)
	for name, value := range state {
		setRegister(e, name, value, ts)
	}
}

// Set записывает свойство, если ts новее текущего значения.
// Возвращает true, если значение было обновлено.
func (s *EntityStore) Set(id uuid.UUID, property string, value any, ts LamportTimestamp) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return setRegister(s.getOrCreate(id), property, value, ts)
}

func setRegister(e *entity, name string, value any, ts LamportTimestamp) bool {
	current, exists := e.props[name]
	if exists && !ts.IsNewerThan(current.ts) {
		return false
	}
	e.props[name] = register{value: value, ts: ts}
	return true
}

// Transform добавляет геометрическое преобразование. Преобразования
// хранятся в порядке timestamp; их композиция выполняется потребителем.
func (s *EntityStore) Transform(id uuid.UUID, matrix [6]float64, ts LamportTimestamp) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getOrCreate(id).insertTransform(transform{matrix: matrix, ts: ts})
}

// insertTransform вставляет преобразование, сохраняя порядок и пропуская дубликаты.
func (e *entity) insertTransform(tr transform) {
	pos, found := slices.BinarySearchFunc(e.transforms, tr.ts, func(t transform, target LamportTimestamp) int {
		return t.ts.Compare(target)
	})
	if found {
		return
	}
	e.transforms = slices.Insert(e.transforms, pos, tr)
}

// Remove помечает сущность как удаленную. Tombstone хранит
// наибольший из полученных timestamp удаления.
func (s *EntityStore) Remove(id uuid.UUID, ts LamportTimestamp) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreate(id)
	if e.tombstone == nil || ts.IsNewerThan(*e.tombstone) {
		tomb := ts
		e.tombstone = &tomb
	}
}

// Get возвращает состояние сущности.
// Возвращает false, если сущность не найдена или удалена.
func (s *EntityStore) Get(id uuid.UUID) (EntityState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[id]
	if !ok || e.tombstone != nil {
		return EntityState{}, false
	}
	return e.state(), true
}

// IsDeleted reports whether the entity carries a tombstone.
func (s *EntityStore) IsDeleted(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[id]
	return ok && e.tombstone != nil
}

// Snapshot возвращает все неудаленные сущности.
func (s *EntityStore) Snapshot() map[uuid.UUID]EntityState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[uuid.UUID]EntityState, len(s.entities))
	for id, e := range s.entities {
		if e.tombstone == nil {
			result[id] = e.state()
		}
	}
	return result
}

// Size возвращает количество неудаленных сущностей.
func (s *EntityStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.entities {
		if e.tombstone == nil {
			count++
		}
	}
	return count
}

// Merge объединяет текущее хранилище с другим по правилам LWW.
// Операция коммутативна и идемпотентна.
func (s *EntityStore) Merge(other *EntityStore) {
	if s == other {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	other.mu.RLock()
	defer other.mu.RUnlock()

	for id, oe := range other.entities {
		e := s.getOrCreate(id)
		for name, reg := range oe.props {
			setRegister(e, name, reg.value, reg.ts)
		}
		for _, tr := range oe.transforms {
			e.insertTransform(tr)
		}
		if oe.tombstone != nil && (e.tombstone == nil || oe.tombstone.IsNewerThan(*e.tombstone)) {
			tomb := *oe.tombstone
			e.tombstone = &tomb
		}
	}
}

func (e *entity) state() EntityState {
	props := make(map[string]any, len(e.props))
	for name, reg := range e.props {
		props[name] = reg.value
	}
	var transforms [][6]float64
	for _, tr := range e.transforms {
		transforms = append(transforms, tr.matrix)
	}
	return EntityState{Properties: props, Transforms: transforms}
}
