package storage

import "github.com/estrelalabs/telereport/internal/types"

// Store defines the storage interface
type Store interface {
	ListMonths() ([]types.MonthSummary, error)
	MonthExists(ym string) (bool, error)
	ReplaceMonthMetrics(ym, filename string, aggs []types.StoreAggregate) error
	GetMonthMetrics(ym string) ([]types.StoreAggregate, error)
	GetStoreMetric(ym, store string) (*types.StoreAggregate, error)
	UpdateVolumes(ym string, volumes map[string]int) error
	PendingVolumes(ym string) (int, error)
	LatestUpload(ym string) (string, error)
	DeleteMonth(ym string) error
	Close() error
}

// NoopStore is a no-op implementation when persistence is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) ListMonths() ([]types.MonthSummary, error)                       { return nil, nil }
func (s *NoopStore) MonthExists(_ string) (bool, error)                              { return false, nil }
func (s *NoopStore) ReplaceMonthMetrics(_, _ string, _ []types.StoreAggregate) error { return nil }
func (s *NoopStore) GetMonthMetrics(_ string) ([]types.StoreAggregate, error)        { return nil, nil }
func (s *NoopStore) GetStoreMetric(_, _ string) (*types.StoreAggregate, error)       { return nil, nil }
func (s *NoopStore) UpdateVolumes(_ string, _ map[string]int) error                  { return nil }
func (s *NoopStore) PendingVolumes(_ string) (int, error)                            { return 0, nil }
func (s *NoopStore) LatestUpload(_ string) (string, error)                           { return "", nil }
func (s *NoopStore) DeleteMonth(_ string) error                                      { return nil }
func (s *NoopStore) Close() error                                                    { return nil }
