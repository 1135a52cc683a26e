package service_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/psyscale/internal/adapters/repository"
	service "github.com/okian/psyscale/internal/app"
	"github.com/okian/psyscale/internal/domain/catalog"
	"github.com/okian/psyscale/internal/domain/instrument"
	"github.com/okian/psyscale/internal/domain/model"
	"github.com/okian/psyscale/internal/domain/scoring"
	"github.com/okian/psyscale/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"
)

func init() {
	_ = logger.Init()
}

func scale(id int, path, name string) instrument.Instrument {
	return instrument.Instrument{
		ID:     id,
		Path:   path,
		Name:   name,
		RawMin: 0,
		RawMax: 10,
		Buckets: []instrument.Bucket{
			{Low: 0, High: 5, Severity: instrument.Normal},
			{Low: 5, High: 10, Severity: instrument.Major},
		},
	}
}

func twoScales() *instrument.Registry {
	r, err := instrument.NewRegistry(scale(1, "a", "A"), scale(2, "b", "B"))
	So(err, ShouldBeNil)
	return r
}

// spyStore counts every call that reaches the store.
type spyStore struct {
	*repository.MemoryStore
	calls atomic.Int64
}

func newSpyStore() *spyStore {
	return &spyStore{MemoryStore: repository.NewMemoryStore()}
}

func (s *spyStore) Insert(ctx context.Context, id int, ct model.ClientType, origin string) (int64, error) {
	s.calls.Add(1)
	return s.MemoryStore.Insert(ctx, id, ct, origin)
}

func (s *spyStore) CountFor(ctx context.Context, id int) (uint64, error) {
	s.calls.Add(1)
	return s.MemoryStore.CountFor(ctx, id)
}

func (s *spyStore) CountAll(ctx context.Context) (map[int]uint64, error) {
	s.calls.Add(1)
	return s.MemoryStore.CountAll(ctx)
}

// failingStore fails every operation after Init.
type failingStore struct {
	*repository.MemoryStore
	initErr error
}

var errBackendDown = errors.New("backend down")

func (f *failingStore) Init(ctx context.Context) error {
	if f.initErr != nil {
		return f.initErr
	}
	return f.MemoryStore.Init(ctx)
}

func (f *failingStore) Insert(context.Context, int, model.ClientType, string) (int64, error) {
	return 0, &repository.StorageError{Op: "insert", Err: errBackendDown}
}

func (f *failingStore) CountFor(context.Context, int) (uint64, error) {
	return 0, &repository.StorageError{Op: "count_for", Err: errBackendDown}
}

func (f *failingStore) CountAll(context.Context) (map[int]uint64, error) {
	return nil, &repository.StorageError{Op: "count_all", Err: errBackendDown}
}

// mockStore is a testify mock of the completion store.
type mockStore struct {
	mock.Mock
}

var _ repository.CompletionStore = &mockStore{}

func (m *mockStore) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Insert(ctx context.Context, id int, ct model.ClientType, origin string) (int64, error) {
	args := m.Called(ctx, id, ct, origin)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) CountFor(ctx context.Context, id int) (uint64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockStore) CountAll(ctx context.Context) (map[int]uint64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[int]uint64)
	return counts, args.Error(1)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

func TestService_StoreCalls(t *testing.T) {
	Convey("Given a service over a mocked store", t, func() {
		ctx := context.Background()
		store := &mockStore{}
		store.On("Init", mock.Anything).Return(nil).Once()
		svc := service.New(service.WithCatalog(twoScales()), service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When B is completed from a mobile browser", func() {
			store.On("Insert", mock.Anything, 2, model.MobileBrowser, "172.16.0.4").Return(int64(1), nil).Once()
			store.On("CountFor", mock.Anything, 2).Return(uint64(41), nil).Once()

			So(svc.RecordCompletion(ctx, "b", int(model.MobileBrowser), "172.16.0.4"), ShouldBeNil)
			stats, err := svc.Statistics(ctx, "b")

			Convey("Then the store sees the instrument id, client type and origin", func() {
				So(err, ShouldBeNil)
				So(stats.Count, ShouldEqual, 41)
				So(stats.ID, ShouldEqual, 2)
				So(store.AssertExpectations(t), ShouldBeTrue)
			})
		})

		Convey("When the client type is invalid", func() {
			err := svc.RecordCompletion(ctx, "a", 9, "")

			Convey("Then Insert is never called", func() {
				So(err, ShouldNotBeNil)
				store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			})
		})

		Convey("When the service stops", func() {
			store.On("Close").Return(nil).Once()
			svc.Stop()

			Convey("Then the store is closed exactly once", func() {
				svc.Stop()
				So(store.AssertExpectations(t), ShouldBeTrue)
			})
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service without a store", t, func() {
		svc := service.New()

		Convey("When the service starts", func() {
			err := svc.Start(context.Background())

			Convey("Then startup fails with ErrNoStore", func() {
				So(errors.Is(err, service.ErrNoStore), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service with only a store", t, func() {
		svc := service.New(service.WithStore(repository.NewMemoryStore()))
		ctx := context.Background()

		Convey("When it is started twice", func() {
			err1 := svc.Start(ctx)
			err2 := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then both calls succeed and the default catalog is served", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(svc.Instruments(), ShouldHaveLength, catalog.Default().Len())
			})

			Convey("Then the memory store reports no pool", func() {
				_, ok := svc.PoolStats()
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given a catalog with a gap between buckets", t, func() {
		broken := scale(1, "a", "A")
		broken.Buckets[1].Low = 6
		reg, err := instrument.NewRegistry(broken)
		So(err, ShouldBeNil)
		svc := service.New(service.WithCatalog(reg), service.WithStore(repository.NewMemoryStore()))

		Convey("When the service starts", func() {
			err := svc.Start(context.Background())

			Convey("Then startup fails with ErrInvalidCatalog", func() {
				So(errors.Is(err, scoring.ErrInvalidCatalog), ShouldBeTrue)
			})
		})
	})

	Convey("Given a store whose schema init fails", t, func() {
		store := &failingStore{MemoryStore: repository.NewMemoryStore(), initErr: &repository.StorageError{Op: "init", Err: errBackendDown}}
		svc := service.New(service.WithStore(store))

		Convey("When the service starts", func() {
			err := svc.Start(context.Background())

			Convey("Then the storage error is returned", func() {
				So(errors.Is(err, repository.ErrStorage), ShouldBeTrue)
				So(errors.Is(err, errBackendDown), ShouldBeTrue)
			})
		})
	})
}

func TestService_NotStarted(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("Then every operation reports ErrNotStarted", func() {
			So(errors.Is(svc.RecordCompletion(ctx, "sds", 1, "127.0.0.1"), service.ErrNotStarted), ShouldBeTrue)
			_, err := svc.Statistics(ctx, "sds")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.AllStatistics(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Classify(ctx, "sds", 40)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.Instruments(), ShouldBeNil)
		})

		Convey("Then Stop is a no-op", func() {
			So(func() { svc.Stop() }, ShouldNotPanic)
		})
	})
}

func TestService_RecordAndQuery(t *testing.T) {
	Convey("Given a started service over instruments A and B", t, func() {
		ctx := context.Background()
		store := newSpyStore()
		svc := service.New(service.WithCatalog(twoScales()), service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When A completes three times", func() {
			for i := 0; i < 3; i++ {
				So(svc.RecordCompletion(ctx, "a", int(model.EmbeddedApp), "10.0.0.1"), ShouldBeNil)
			}

			Convey("Then all statistics report A=3 and B=0 in declaration order", func() {
				all, err := svc.AllStatistics(ctx)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 2)
				So(all[0].Name, ShouldEqual, "A")
				So(all[0].Count, ShouldEqual, 3)
				So(all[1].Name, ShouldEqual, "B")
				So(all[1].Count, ShouldEqual, 0)
			})

			Convey("Then single statistics for B report zero", func() {
				st, err := svc.Statistics(ctx, "b")
				So(err, ShouldBeNil)
				So(st.Name, ShouldEqual, "B")
				So(st.Count, ShouldEqual, 0)
			})

			Convey("Then the stored records carry the client type and origin", func() {
				recs := store.Records()
				So(recs, ShouldHaveLength, 3)
				So(recs[0].InstrumentID, ShouldEqual, 1)
				So(recs[0].ClientType, ShouldEqual, model.EmbeddedApp)
				So(recs[0].Origin, ShouldEqual, "10.0.0.1")
			})
		})

		Convey("When a completion names an unknown path", func() {
			before := store.calls.Load()
			err := svc.RecordCompletion(ctx, "nope", int(model.MobileBrowser), "10.0.0.1")

			Convey("Then it is rejected without touching the store", func() {
				So(errors.Is(err, service.ErrUnknownInstrumentPath), ShouldBeTrue)
				So(store.calls.Load(), ShouldEqual, before)
				So(store.Records(), ShouldBeEmpty)
			})
		})

		Convey("When a completion carries an unrecognized client type", func() {
			before := store.calls.Load()
			err := svc.RecordCompletion(ctx, "a", 99, "10.0.0.1")

			Convey("Then it is rejected with the raw value and no record is written", func() {
				So(errors.Is(err, model.ErrInvalidClientType), ShouldBeTrue)
				var ict *model.InvalidClientTypeError
				So(errors.As(err, &ict), ShouldBeTrue)
				So(ict.Raw, ShouldEqual, 99)
				So(store.calls.Load(), ShouldEqual, before)
				So(store.Records(), ShouldBeEmpty)
			})
		})

		Convey("When statistics are requested for an unknown path", func() {
			_, err := svc.Statistics(ctx, "nope")

			Convey("Then ErrUnknownInstrumentPath is returned", func() {
				So(errors.Is(err, service.ErrUnknownInstrumentPath), ShouldBeTrue)
			})
		})
	})
}

func TestService_Completeness(t *testing.T) {
	Convey("Given the compiled-in catalog and an empty store", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithStore(repository.NewMemoryStore()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When all statistics are requested", func() {
			all, err := svc.AllStatistics(ctx)

			Convey("Then every instrument appears exactly once with zero", func() {
				So(err, ShouldBeNil)
				decl := catalog.Default().All()
				So(all, ShouldHaveLength, len(decl))
				seen := map[string]bool{}
				for i, st := range all {
					So(st.Name, ShouldEqual, decl[i].Name)
					So(st.Count, ShouldEqual, 0)
					So(seen[st.Name], ShouldBeFalse)
					seen[st.Name] = true
				}
			})
		})
	})
}

func TestService_Monotonic(t *testing.T) {
	Convey("Given concurrent writers and a reader", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithCatalog(twoScales()), service.WithStore(repository.NewMemoryStore()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		const writers, perWriter = 8, 25
		var wg sync.WaitGroup
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					_ = svc.RecordCompletion(ctx, "a", int(model.MobileBrowser), "10.0.0.2")
				}
			}()
		}

		var last uint64
		decreased := false
		for i := 0; i < 50; i++ {
			st, err := svc.Statistics(ctx, "a")
			if err == nil {
				if st.Count < last {
					decreased = true
				}
				last = st.Count
			}
		}
		wg.Wait()

		Convey("Then observed counts never decrease and every write is counted", func() {
			So(decreased, ShouldBeFalse)
			st, err := svc.Statistics(ctx, "a")
			So(err, ShouldBeNil)
			So(st.Count, ShouldEqual, writers*perWriter)
		})
	})
}

func TestService_StorageFailure(t *testing.T) {
	Convey("Given a service over a failing store", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithCatalog(twoScales()),
			service.WithStore(&failingStore{MemoryStore: repository.NewMemoryStore()}),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then record and query operations surface the storage error", func() {
			err := svc.RecordCompletion(ctx, "a", int(model.EmbeddedApp), "10.0.0.3")
			So(errors.Is(err, repository.ErrStorage), ShouldBeTrue)

			_, err = svc.Statistics(ctx, "a")
			So(errors.Is(err, repository.ErrStorage), ShouldBeTrue)

			all, err := svc.AllStatistics(ctx)
			So(errors.Is(err, repository.ErrStorage), ShouldBeTrue)
			So(all, ShouldBeNil)
		})
	})
}

// gapClassifier finds no bucket for any score.
type gapClassifier struct{}

func (gapClassifier) Classify(id, raw int) (scoring.Result, error) {
	return scoring.Result{}, fmt.Errorf("%w: instrument %d score %d", scoring.ErrScoreOutOfDomain, id, raw)
}

func TestService_ClassifyCatalogDefect(t *testing.T) {
	Convey("Given a classifier whose table misses an in-range score", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithCatalog(twoScales()),
			service.WithStore(repository.NewMemoryStore()),
			service.WithClassifier(gapClassifier{}),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When an in-range score is classified", func() {
			_, err := svc.Classify(ctx, "a", 3)

			Convey("Then ErrScoreOutOfDomain surfaces as a catalog defect", func() {
				So(errors.Is(err, scoring.ErrScoreOutOfDomain), ShouldBeTrue)
				So(errors.Is(err, service.ErrRawScoreOutOfRange), ShouldBeFalse)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithStore(repository.NewMemoryStore()))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When it is stopped and started again", func() {
			svc.Stop()
			err := svc.Start(ctx)

			Convey("Then the restart is refused and operations report ErrNotStarted", func() {
				So(errors.Is(err, service.ErrStopped), ShouldBeTrue)
				_, err := svc.AllStatistics(ctx)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})

			Convey("Then a second Stop is a no-op", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})
		})
	})
}

func TestService_Classify(t *testing.T) {
	Convey("Given a started service over the compiled-in catalog", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithStore(repository.NewMemoryStore()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When an SDS raw score of 42 is classified", func() {
			res, err := svc.Classify(ctx, "sds", 42)

			Convey("Then the rescaled score 53 lands in the mild bucket", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 53)
				So(res.Bucket.Severity, ShouldEqual, instrument.Mild)
			})
		})

		Convey("When a raw score is above the instrument's range", func() {
			_, err := svc.Classify(ctx, "phq9", 28)

			Convey("Then ErrRawScoreOutOfRange is returned rather than a catalog defect", func() {
				So(errors.Is(err, service.ErrRawScoreOutOfRange), ShouldBeTrue)
				So(errors.Is(err, scoring.ErrScoreOutOfDomain), ShouldBeFalse)
			})
		})

		Convey("When raw scores far outside the range are classified", func() {
			_, low := svc.Classify(ctx, "sds", -1)
			_, huge := svc.Classify(ctx, "sds", math.MaxInt)
			_, tiny := svc.Classify(ctx, "sds", math.MinInt)

			Convey("Then they are rejected before rescaling", func() {
				So(errors.Is(low, service.ErrRawScoreOutOfRange), ShouldBeTrue)
				So(errors.Is(huge, service.ErrRawScoreOutOfRange), ShouldBeTrue)
				So(errors.Is(tiny, service.ErrRawScoreOutOfRange), ShouldBeTrue)
			})
		})

		Convey("When the range boundaries are classified", func() {
			_, minErr := svc.Classify(ctx, "phq9", 0)
			_, maxErr := svc.Classify(ctx, "phq9", 27)

			Convey("Then both are interpreted", func() {
				So(minErr, ShouldBeNil)
				So(maxErr, ShouldBeNil)
			})
		})

		Convey("When the path is unknown", func() {
			_, err := svc.Classify(ctx, "nope", 1)

			Convey("Then ErrUnknownInstrumentPath is returned", func() {
				So(errors.Is(err, service.ErrUnknownInstrumentPath), ShouldBeTrue)
			})
		})
	})
}
