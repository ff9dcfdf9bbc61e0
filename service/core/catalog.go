package core

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	ex "github.com/ignaciocanosa/Precios-Relativos/data/extensions"
	m "github.com/ignaciocanosa/Precios-Relativos/data/models"
)

// DefaultSeries are the series every new catalog starts with.
func DefaultSeries() []m.SeriesDescriptor {
	return []m.SeriesDescriptor{
		{Id: 543, Name: "Vacas C. Gtía. Preñez", Unit: m.UnitPerHead},
		{Id: 531, Name: "Vaquillonas C. Gtía. Preñez", Unit: m.UnitPerHead},
		{Id: 32, Name: "Novillos EyB 431/460 (MAG)", Unit: m.UnitPerKg},
		{Id: 47, Name: "Vacas Conserva Buena (MAG)", Unit: m.UnitPerKg},
		{Id: 45, Name: "Vacas Buenas (MAG)", Unit: m.UnitPerKg},
		{Id: 477, Name: "Terneros 160-180 Kg", Unit: m.UnitPerKg},
		{Id: 313, Name: "Terneras 150-170 Kg", Unit: m.UnitPerKg},
		{Id: 1861, Name: "Alambre Nº17 x Kilo", Unit: m.UnitPerKg},
		{Id: 10931, Name: "Urea Granulada", Unit: m.UnitPerKg},
		{Id: 10921, Name: "Fosfato Diamónico", Unit: m.UnitPerKg},
		{Id: 7201, Name: "Toyota Hilux CD", Unit: m.UnitPerUnit},
		{Id: 22028, Name: "Unidad de Trabajo Agrícola (UTA)", Unit: m.UnitPerUnit},
	}
}

// Catalog maps series ids to their display descriptors. Safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries map[int32]m.SeriesDescriptor
	order   []int32
}

func NewCatalog(seed []m.SeriesDescriptor) *Catalog {
	cat := &Catalog{
		entries: make(map[int32]m.SeriesDescriptor, len(seed)),
		order:   make([]int32, 0, len(seed)),
	}
	for _, sd := range seed {
		cat.put(sd)
	}
	return cat
}

func (cat *Catalog) Lookup(id int32) (m.SeriesDescriptor, error) {
	cat.mu.RLock()
	defer cat.mu.RUnlock()

	sd, ok := cat.entries[id]
	if !ok {
		return m.SeriesDescriptor{}, fmt.Errorf("series %d: %w", id, ErrUnknownSeries)
	}
	return sd, nil
}

// Register adds a series or replaces the descriptor of an existing id.
func (cat *Catalog) Register(id int32, displayName string, unit m.Unit) (m.SeriesDescriptor, error) {
	if id <= 0 {
		return m.SeriesDescriptor{}, fmt.Errorf("series id %d must be positive: %w", id, ErrInvalidIdentifier)
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		return m.SeriesDescriptor{}, fmt.Errorf("series name is required: %w", ErrInvalidInput)
	}

	if _, err := m.ParseUnit(string(unit)); err != nil {
		return m.SeriesDescriptor{}, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	sd := m.SeriesDescriptor{Id: id, Name: name, Unit: unit}

	cat.mu.Lock()
	defer cat.mu.Unlock()
	cat.put(sd)

	return sd, nil
}

func (cat *Catalog) put(sd m.SeriesDescriptor) {
	if _, exists := cat.entries[sd.Id]; !exists {
		cat.order = append(cat.order, sd.Id)
	}
	cat.entries[sd.Id] = sd
}

// Descriptors lists every entry in registration order.
func (cat *Catalog) Descriptors() []m.SeriesDescriptor {
	cat.mu.RLock()
	defer cat.mu.RUnlock()

	res := make([]m.SeriesDescriptor, len(cat.order))
	for i, id := range cat.order {
		res[i] = cat.entries[id]
	}
	return res
}

// Resolve finds the id whose composed column name is columnName.
func (cat *Catalog) Resolve(columnName string) (int32, error) {
	matches := ex.FilterMultiple(cat.Descriptors(), func(sd m.SeriesDescriptor) bool {
		return sd.ColumnName() == columnName
	})

	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("series %q: %w", columnName, ErrUnknownSeries)
	case 1:
		return matches[0].Id, nil
	default:
		return 0, fmt.Errorf("%d series share the name %q: %w", len(matches), columnName, ErrDuplicateColumn)
	}
}

// ParseIdentifier reads a series id typed by the user.
func ParseIdentifier(text string) (int32, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("series id %q is not a number: %w", text, ErrInvalidIdentifier)
	}
	if id <= 0 {
		return 0, fmt.Errorf("series id %d must be positive: %w", id, ErrInvalidIdentifier)
	}
	return int32(id), nil
}
