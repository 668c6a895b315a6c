package crdt

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// LamportTimestamp is a (counter, actor) pair that totally orders events
// across replicas. It is a value type: advancing produces a new timestamp.
type LamportTimestamp struct {
	Counter uint64    `json:"counter"`  // логический счетчик
	ActorID uuid.UUID `json:"actor_id"` // идентификатор автора, разрывает ничьи
}

// NewTimestamp создает timestamp с заданным счетчиком и автором.
func NewTimestamp(counter uint64, actorID uuid.UUID) LamportTimestamp {
	return LamportTimestamp{Counter: counter, ActorID: actorID}
}

// Advance возвращает следующий timestamp того же автора.
func (t LamportTimestamp) Advance() LamportTimestamp {
	return LamportTimestamp{Counter: t.Counter + 1, ActorID: t.ActorID}
}

// Compare сравнивает два timestamp и возвращает -1, 0 или 1.
// Сначала сравнивается Counter, при равенстве ActorID (побайтово),
// поэтому порядок одинаков на всех репликах.
func (t LamportTimestamp) Compare(other LamportTimestamp) int {
	switch {
	case t.Counter < other.Counter:
		return -1
	case t.Counter > other.Counter:
		return 1
	}
	return bytes.Compare(t.ActorID[:], other.ActorID[:])
}

// Less reports whether t is ordered strictly before other.
func (t LamportTimestamp) Less(other LamportTimestamp) bool {
	return t.Compare(other) < 0
}

// IsNewerThan reports whether t is ordered strictly after other.
func (t LamportTimestamp) IsNewerThan(other LamportTimestamp) bool {
	return t.Compare(other) > 0
}

// String returns "counter@actor".
func (t LamportTimestamp) String() string {
	return fmt.Sprintf("%d@%s", t.Counter, t.ActorID)
}

// LamportClock выдает timestamp для одного автора.
// В отличие от LamportTimestamp, часы изменяемы и потокобезопасны.
type LamportClock struct {
	counter uint64     // монотонно возрастающий счетчик
	actorID uuid.UUID  // идентификатор автора
	mu      sync.Mutex // мьютекс для потокобезопасности
}

// NewLamportClock создает часы со случайным идентификатором автора.
func NewLamportClock() *LamportClock {
	return &LamportClock{actorID: uuid.New()}
}

// NewLamportClockWithActor создает часы для заданного автора.
// Используется для тестирования или восстановления состояния.
func NewLamportClockWithActor(actorID uuid.UUID) *LamportClock {
	return &LamportClock{actorID: actorID}
}

// Tick увеличивает счетчик и возвращает timestamp нового локального события.
func (lc *LamportClock) Tick() LamportTimestamp {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.counter++
	return LamportTimestamp{Counter: lc.counter, ActorID: lc.actorID}
}

// Update учитывает timestamp, полученный от другой реплики:
// counter = max(local, remote) + 1.
func (lc *LamportClock) Update(remote LamportTimestamp) LamportTimestamp {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if remote.Counter > lc.counter {
		lc.counter = remote.Counter
	}
	lc.counter++

	return LamportTimestamp{Counter: lc.counter, ActorID: lc.actorID}
}

// Now возвращает текущий timestamp без изменения счетчика.
func (lc *LamportClock) Now() LamportTimestamp {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	return LamportTimestamp{Counter: lc.counter, ActorID: lc.actorID}
}

// ActorID возвращает идентификатор автора.
func (lc *LamportClock) ActorID() uuid.UUID {
	return lc.actorID
}

// SetCounter устанавливает счетчик (например, после перезапуска).
func (lc *LamportClock) SetCounter(counter uint64) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.counter = counter
}
