package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/MKhiriev/go-service-bootstrap/models"
)

// memoryItemRepository keeps items in a map. It is the default store and
// loses everything on restart.
type memoryItemRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]models.Item
}

func NewMemoryItemRepository() ItemRepository {
	return &memoryItemRepository{
		nextID: 1,
		items:  make(map[int64]models.Item),
	}
}

func (m *memoryItemRepository) CreateItem(_ context.Context, item models.Item) (models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.items {
		if strings.EqualFold(existing.Name, item.Name) {
			return models.Item{}, ErrItemExists
		}
	}

	item.ID = m.nextID
	m.nextID++
	m.items[item.ID] = item
	return item, nil
}

func (m *memoryItemRepository) ListItems(_ context.Context, limit int) ([]models.Item, error) {
	m.mu.RLock()
	items := make([]models.Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	m.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memoryItemRepository) GetItem(_ context.Context, id int64) (models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return models.Item{}, ErrItemNotFound
	}
	return item, nil
}

func (m *memoryItemRepository) DeleteItem(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryItemRepository) Summary(context.Context) (models.ItemSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := models.ItemSummary{Count: len(m.items)}
	for _, item := range m.items {
		summary.TotalValue += item.Price
	}
	return summary, nil
}
