// Package bot диалоговое состояние Telegram-бота результатов.
package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// DialogState данные диалога с пользователем бота.
type DialogState struct {
	Step      string `json:"step"`       // Текущий шаг: "welcome", "await_hemis_id"
	HemisID   string `json:"hemis_id"`   // Привязанный номер студенческого билета
	Username  string `json:"username"`   // Ник пользователя
	FirstName string `json:"first_name"` // Имя пользователя
}

// Шаги диалога.
const (
	StepWelcome      = "welcome"
	StepAwaitHemisID = "await_hemis_id"
)

// Store определяет интерфейс для работы с состоянием диалога.
type Store interface {
	Get(userID int64) (DialogState, bool)
	Set(userID int64, state DialogState) error
	Delete(userID int64) error
}

// MemoryStore — in‑memory реализация.
type MemoryStore struct {
	data map[int64]DialogState
	mu   sync.RWMutex
}

// NewMemoryStore создаёт новый MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[int64]DialogState)}
}

func (m *MemoryStore) Get(userID int64) (DialogState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.data[userID]
	return state, ok
}

func (m *MemoryStore) Set(userID int64, state DialogState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[userID] = state
	return nil
}

func (m *MemoryStore) Delete(userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, userID)
	return nil
}

// JSONStore — реализация, сохраняющая данные в JSON-файл, переживает рестарт.
type JSONStore struct {
	filename string
	mu       sync.Mutex
}

// NewJSONStore создаёт новый JSONStore с указанным файлом.
func NewJSONStore(filename string) *JSONStore {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		initial := make(map[int64]DialogState)
		data, _ := json.Marshal(initial)
		_ = os.WriteFile(filename, data, 0644)
	}
	return &JSONStore{filename: filename}
}

func (j *JSONStore) load() (map[int64]DialogState, error) {
	data, err := os.ReadFile(j.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", j.filename, err)
	}
	if len(data) == 0 {
		return make(map[int64]DialogState), nil
	}
	var m map[int64]DialogState
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return m, nil
}

func (j *JSONStore) save(m map[int64]DialogState) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(j.filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", j.filename, err)
	}
	return nil
}

func (j *JSONStore) Get(userID int64) (DialogState, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	m, err := j.load()
	if err != nil {
		return DialogState{}, false
	}
	state, ok := m[userID]
	return state, ok
}

func (j *JSONStore) Set(userID int64, state DialogState) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	m, err := j.load()
	if err != nil {
		return err
	}
	m[userID] = state
	return j.save(m)
}

func (j *JSONStore) Delete(userID int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	m, err := j.load()
	if err != nil {
		return err
	}
	delete(m, userID)
	return j.save(m)
}

// NewStore выбирает реализацию по типу из конфигурации.
func NewStore(storageType, stateFile string) Store {
	if storageType == "json" && stateFile != "" {
		return NewJSONStore(stateFile)
	}
	return NewMemoryStore()
}
