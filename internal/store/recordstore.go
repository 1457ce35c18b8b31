package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/limasantoss/marketplace-dash/internal/analytics"
	"github.com/limasantoss/marketplace-dash/internal/models"
	"github.com/limasantoss/marketplace-dash/internal/util"

	"go.uber.org/zap"
)

// Loader produces the full order dataset
type Loader interface {
	Load(ctx context.Context) ([]models.OrderRecord, error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(ctx context.Context) ([]models.OrderRecord, error)

// Load calls f
func (f LoaderFunc) Load(ctx context.Context) ([]models.OrderRecord, error) { return f(ctx) }

// CSVFileLoader loads the dataset from an export on disk
func CSVFileLoader(path string, opts CSVOptions) Loader {
	return LoaderFunc(func(ctx context.Context) ([]models.OrderRecord, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open dataset: %w", err)
		}
		defer f.Close()
		return LoadCSV(f, opts)
	})
}

// PostgresLoader loads the dataset from the marketplace_orders table
func PostgresLoader(s *Store, loc *time.Location, dropUndelivered bool) Loader {
	return LoaderFunc(func(ctx context.Context) ([]models.OrderRecord, error) {
		return s.LoadOrderRecords(ctx, loc, dropUndelivered)
	})
}

// RecordStore loads the dataset once and shares it read-only afterwards.
// Records never change after the load, so readers take no lock.
type RecordStore struct {
	loader Loader
	logger *zap.Logger

	once    sync.Once
	loaded  atomic.Bool
	records analytics.RecordSet
	err     error
}

// NewRecordStore creates a record store backed by loader
func NewRecordStore(loader Loader) *RecordStore {
	return &RecordStore{
		loader: loader,
		logger: util.GetLogger(),
	}
}

// Records returns the dataset, loading it on first use. A failed load is
// remembered and returned to every later caller.
func (rs *RecordStore) Records(ctx context.Context) (analytics.RecordSet, error) {
	rs.once.Do(func() {
		ctx, span := util.StartSpan(ctx, "RecordStore.Load")
		defer span.End()

		start := time.Now()
		records, err := rs.loader.Load(ctx)
		util.RecordStoreLoadLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			util.RecordStoreLoadFailedTotal.Inc()
			util.RecordError(span, err)
			rs.err = fmt.Errorf("failed to load order records: %w", err)
			rs.logger.Error("Record store load failed", zap.Error(err))
			return
		}

		rs.records = analytics.NewRecordSet(records)
		rs.loaded.Store(true)
		util.RecordStoreRecords.Set(float64(len(records)))
		rs.logger.Info("Record store loaded",
			zap.Int("records", len(records)),
			zap.Duration("took", time.Since(start)))
	})
	return rs.records, rs.err
}

// Loaded reports whether a successful load has completed
func (rs *RecordStore) Loaded() bool {
	return rs.loaded.Load()
}
