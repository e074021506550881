package maptype

import (
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geographia/internal/domain"
	"geographia/internal/eventbus"
)

func newService() *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(eventbus.New(log), log)
}

func TestStartsAtDefault(t *testing.T) {
	s := newService()
	assert.Equal(t, domain.TypeDefault, s.CurrentType())
}

func TestInvalidTypeKeepsPrevious(t *testing.T) {
	s := newService()
	require.NoError(t, s.SetCurrentType(domain.TypeRural))

	var emitted []domain.LocationType
	s.Subscribe(func(lt domain.LocationType) { emitted = append(emitted, lt) })

	err := s.SetCurrentType(domain.LocationType("VOLCANIC"))

	var invalid *domain.InvalidTypeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "VOLCANIC", invalid.Value)
	assert.Equal(t, domain.TypeRural, s.CurrentType())
	assert.Equal(t, []domain.LocationType{domain.TypeRural}, emitted, "only the replayed value")
}

func TestLateSubscriberGetsLastValue(t *testing.T) {
	s := newService()
	require.NoError(t, s.SetCurrentType(domain.TypeHistoric))

	var got []domain.LocationType
	s.Subscribe(func(lt domain.LocationType) { got = append(got, lt) })
	require.NoError(t, s.SetCurrentType(domain.TypeGeographic))

	assert.Equal(t, []domain.LocationType{domain.TypeHistoric, domain.TypeGeographic}, got)
}

func TestEverySetIsEmitted(t *testing.T) {
	s := newService()
	var count int
	s.Subscribe(func(domain.LocationType) { count++ })

	require.NoError(t, s.SetCurrentType(domain.TypeRural))
	require.NoError(t, s.SetCurrentType(domain.TypeRural))

	assert.Equal(t, 3, count, "replay plus two sets")
}

func TestCycleWraps(t *testing.T) {
	s := newService()
	seen := []domain.LocationType{s.CurrentType()}
	for i := 0; i < len(domain.LocationTypes); i++ {
		seen = append(seen, s.Cycle())
	}
	assert.Equal(t, []domain.LocationType{
		domain.TypeDefault, domain.TypeRural, domain.TypeGeographic, domain.TypeHistoric, domain.TypeDefault,
	}, seen)
}

func TestFilter(t *testing.T) {
	locs := []domain.Location{
		{ID: 1, Type: domain.TypeRural},
		{ID: 2, Type: domain.TypeHistoric},
		{ID: 3, Type: domain.TypeRural},
	}

	assert.Len(t, Filter(locs, domain.TypeDefault), 3)
	rural := Filter(locs, domain.TypeRural)
	require.Len(t, rural, 2)
	assert.Equal(t, 1, rural[0].ID)
	assert.Equal(t, 3, rural[1].ID)
	assert.Empty(t, Filter(locs, domain.TypeGeographic))
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, StyleOutdoors, StyleFor(domain.TypeDefault))
	assert.Equal(t, StyleSatelliteStreets, StyleFor(domain.TypeRural))
	assert.Equal(t, StyleStandard, StyleFor(domain.LocationType("x")))
}

func TestStaleChangeIsSkipped(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	bus := eventbus.New(log)
	s := NewService(bus, log)

	var got []domain.LocationType
	s.Subscribe(func(lt domain.LocationType) { got = append(got, lt) })
	require.NoError(t, s.SetCurrentType(domain.TypeRural))
	require.NoError(t, s.SetCurrentType(domain.TypeHistoric))

	bus.Publish(domain.TypeChangedEvent{Current: domain.TypeRural, Seq: 1})

	assert.Equal(t, []domain.LocationType{domain.TypeDefault, domain.TypeRural, domain.TypeHistoric}, got)
}

func TestReentrantSetDuringReplay(t *testing.T) {
	s := newService()

	var got []domain.LocationType
	s.Subscribe(func(lt domain.LocationType) {
		got = append(got, lt)
		if lt == domain.TypeDefault {
			require.NoError(t, s.SetCurrentType(domain.TypeRural))
		}
	})

	assert.Equal(t, []domain.LocationType{domain.TypeDefault, domain.TypeRural}, got)
}

func TestConcurrentSetsEndOnCurrentType(t *testing.T) {
	s := newService()

	var wg sync.WaitGroup
	var mu sync.Mutex
	lasts := make([]domain.LocationType, 4)
	for i := range lasts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Subscribe(func(lt domain.LocationType) {
				mu.Lock()
				lasts[i] = lt
				mu.Unlock()
			})
		}(i)
	}
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = s.SetCurrentType(domain.LocationTypes[(g+i)%len(domain.LocationTypes)])
			}
		}(g)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i, lt := range lasts {
		assert.Equal(t, s.CurrentType(), lt, "subscriber %d", i)
	}
}
