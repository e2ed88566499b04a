package roboguice_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/mstian06/roboguice"
	"github.com/mstian06/roboguice/metrics"
	"github.com/mstian06/roboguice/mock"
)

const handlerID roboguice.TypeID = "Handler"

type ScopeTestSuite struct {
	suite.Suite
	scope *roboguice.ContextScope
	built int
}

func (s *ScopeTestSuite) SetupTest() {
	s.scope = roboguice.NewContextScope()
	s.built = 0
}

func (s *ScopeTestSuite) newHandler() (any, error) {
	s.built++
	return &mock.Handler{ID: s.built}, nil
}

func (s *ScopeTestSuite) TestCachedWithinContextRebuiltAcrossContexts() {
	ctxA, sessA, err := s.scope.Enter(nil, &mock.Activity{Name: "a"})
	s.Require().NoError(err)

	h1, err := s.scope.GetOrCreate(ctxA, handlerID, s.newHandler)
	s.NoError(err)
	again, err := s.scope.GetOrCreate(ctxA, handlerID, s.newHandler)
	s.NoError(err)
	s.Same(h1, again, "same context should return the cached instance")
	s.Equal(1, s.built)

	s.scope.Exit(sessA)

	ctxB, sessB, err := s.scope.Enter(nil, &mock.Activity{Name: "b"})
	s.Require().NoError(err)
	defer sessB.Exit()

	h2, err := s.scope.GetOrCreate(ctxB, handlerID, s.newHandler)
	s.NoError(err)
	s.NotSame(h1, h2)
	s.Equal(2, s.built)
}

func (s *ScopeTestSuite) TestNoActiveContext() {
	_, err := s.scope.GetOrCreate(roboguice.NewContainerContext(nil), handlerID, s.newHandler)
	var noCtx *roboguice.NoActiveContextError
	s.Require().True(errors.As(err, &noCtx))
	s.Equal("Handler", noCtx.Type)
	s.Zero(s.built, "factory must not run without a context")

	_, err = s.scope.GetOrCreate(nil, handlerID, s.newHandler)
	s.True(errors.As(err, &noCtx))
}

func (s *ScopeTestSuite) TestIsolationBetweenConcurrentHandles() {
	handles := []roboguice.ContextHandle{
		&mock.Activity{Name: "foreground"},
		&mock.BackgroundService{Name: "sync"},
		&mock.Activity{Name: "foreground"},
	}

	var wg sync.WaitGroup
	results := make([]any, len(handles))
	errs := make(chan error, len(handles)*10)

	for i, h := range handles {
		wg.Add(1)
		go func(i int, h roboguice.ContextHandle) {
			defer wg.Done()
			ctx, sess, err := s.scope.Enter(nil, h)
			if err != nil {
				errs <- err
				return
			}
			defer sess.Exit()

			for n := 0; n < 10; n++ {
				v, err := s.scope.GetOrCreate(ctx, handlerID, func() (any, error) {
					return &mock.Handler{ID: i}, nil
				})
				if err != nil {
					errs <- err
					return
				}
				if results[i] == nil {
					results[i] = v
				} else if results[i] != v {
					errs <- fmt.Errorf("handle %d saw two instances", i)
				}
			}
		}(i, h)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}
	s.NotSame(results[0], results[1])
	s.NotSame(results[0], results[2], "equal-valued handles with distinct identity must not share")
	s.NotSame(results[1], results[2])
	s.Zero(s.scope.Active())
}

func (s *ScopeTestSuite) TestExitDiscardsEntries() {
	ctx, sess, err := s.scope.Enter(nil, &mock.Activity{Name: "main"})
	s.Require().NoError(err)
	first, err := s.scope.GetOrCreate(ctx, handlerID, s.newHandler)
	s.Require().NoError(err)
	sess.Exit()

	ctx, sess, err = s.scope.Enter(nil, &mock.Activity{Name: "main"})
	s.Require().NoError(err)
	defer sess.Exit()
	second, err := s.scope.GetOrCreate(ctx, handlerID, s.newHandler)
	s.Require().NoError(err)

	s.NotSame(first, second)
	s.Equal(2, s.built, "factory should run again after exit")
}

func (s *ScopeTestSuite) TestSameHandleReenteredAfterExit() {
	handle := &mock.Activity{Name: "main"}
	ctx, sess, err := s.scope.Enter(nil, handle)
	s.Require().NoError(err)
	_, err = s.scope.GetOrCreate(ctx, handlerID, s.newHandler)
	s.Require().NoError(err)
	sess.Exit()

	ctx, sess, err = s.scope.Enter(nil, handle)
	s.Require().NoError(err)
	defer sess.Exit()
	_, err = s.scope.GetOrCreate(ctx, handlerID, s.newHandler)
	s.Require().NoError(err)
	s.Equal(2, s.built)
}

func (s *ScopeTestSuite) TestStaleContextAfterExit() {
	ctx, sess, err := s.scope.Enter(nil, &mock.Activity{Name: "main"})
	s.Require().NoError(err)
	_, err = s.scope.GetOrCreate(ctx, handlerID, s.newHandler)
	s.Require().NoError(err)

	sess.Exit()

	_, err = s.scope.GetOrCreate(ctx, handlerID, s.newHandler)
	var noCtx *roboguice.NoActiveContextError
	s.True(errors.As(err, &noCtx), "an exited context must not return its old instance")
	_, ok := s.scope.Current(ctx)
	s.False(ok)
}

func (s *ScopeTestSuite) TestReentry() {
	s.Run("DifferentHandle", func() {
		ctx, sess, err := s.scope.Enter(nil, &mock.Activity{Name: "a"})
		s.Require().NoError(err)
		defer sess.Exit()

		other := &mock.BackgroundService{Name: "b"}
		_, _, err = s.scope.Enter(ctx, other)
		var reentry *roboguice.ScopeReentryError
		s.Require().True(errors.As(err, &reentry))
		s.Equal(other, reentry.Requested)
	})

	s.Run("SameHandleNests", func() {
		handle := &mock.Activity{Name: "nested"}
		outerCtx, outer, err := s.scope.Enter(nil, handle)
		s.Require().NoError(err)

		innerCtx, inner, err := s.scope.Enter(outerCtx, handle)
		s.Require().NoError(err)
		s.Equal(1, s.scope.Active())

		v1, err := s.scope.GetOrCreate(innerCtx, handlerID, s.newHandler)
		s.NoError(err)

		inner.Exit()
		v2, err := s.scope.GetOrCreate(outerCtx, handlerID, s.newHandler)
		s.NoError(err)
		s.Same(v1, v2, "nested exit must keep the outer cache")

		outer.Exit()
		s.Zero(s.scope.Active())
		_, err = s.scope.GetOrCreate(outerCtx, handlerID, s.newHandler)
		s.Error(err)
	})
}

func (s *ScopeTestSuite) TestExitIsIdempotent() {
	_, sess, err := s.scope.Enter(nil, &mock.Activity{Name: "a"})
	s.Require().NoError(err)

	s.NotPanics(func() {
		sess.Exit()
		sess.Exit()
		s.scope.Exit(sess)
		s.scope.Exit(nil)
	})
	s.True(sess.Exited())
	s.Zero(s.scope.Active())
}

func (s *ScopeTestSuite) TestInvalidHandles() {
	var invalid *roboguice.InvalidHandleError

	_, _, err := s.scope.Enter(nil, nil)
	s.True(errors.As(err, &invalid))

	_, _, err = s.scope.Enter(nil, []string{"not", "comparable"})
	s.True(errors.As(err, &invalid))
	s.Zero(s.scope.Active())
}

func (s *ScopeTestSuite) TestFactoryErrorIsNotCached() {
	ctx, sess, err := s.scope.Enter(nil, &mock.Activity{Name: "a"})
	s.Require().NoError(err)
	defer sess.Exit()

	boom := errors.New("boom")
	_, err = s.scope.GetOrCreate(ctx, handlerID, func() (any, error) { return nil, boom })
	s.ErrorIs(err, boom)

	v, err := s.scope.GetOrCreate(ctx, handlerID, s.newHandler)
	s.NoError(err)
	s.NotNil(v)
}

func (s *ScopeTestSuite) TestFactoryMayResolveOtherScopedTypes() {
	ctx, sess, err := s.scope.Enter(nil, &mock.Activity{Name: "a"})
	s.Require().NoError(err)
	defer sess.Exit()

	v, err := s.scope.GetOrCreate(ctx, "Outer", func() (any, error) {
		return s.scope.GetOrCreate(ctx, handlerID, s.newHandler)
	})
	s.NoError(err)
	inner, err := s.scope.GetOrCreate(ctx, handlerID, s.newHandler)
	s.NoError(err)
	s.Same(v, inner)
}

func (s *ScopeTestSuite) TestExitDuringFactoryDoesNotCache() {
	ctx, sess, err := s.scope.Enter(nil, &mock.Activity{Name: "a"})
	s.Require().NoError(err)

	_, err = s.scope.GetOrCreate(ctx, handlerID, func() (any, error) {
		sess.Exit()
		return &mock.Handler{}, nil
	})
	var noCtx *roboguice.NoActiveContextError
	s.True(errors.As(err, &noCtx))
}

func (s *ScopeTestSuite) TestHandleSuppliesItsTypes() {
	activity := &mock.Activity{Name: "main"}
	ctx, sess, err := s.scope.Enter(nil, activity)
	s.Require().NoError(err)

	for _, id := range []roboguice.TypeID{
		roboguice.TypeIDOf[roboguice.ContextHandle](),
		roboguice.TypeIDOf[*mock.Activity](),
		roboguice.TypeIDOf[mock.Screen](),
	} {
		v, ok := s.scope.Supplied(ctx, id)
		s.True(ok, string(id))
		s.Same(activity, v, string(id))
	}
	_, ok := s.scope.Supplied(ctx, roboguice.TypeIDOf[*mock.BackgroundService]())
	s.False(ok)

	v, err := s.scope.GetOrCreate(ctx, roboguice.TypeIDOf[*mock.Activity](), s.newHandler)
	s.NoError(err)
	s.IsType(&mock.Handler{}, v, "supplied values are not cached instances")
	s.Equal(1, s.built)

	current, ok := s.scope.Current(ctx)
	s.True(ok)
	s.Equal(activity, current)

	sess.Exit()
	_, ok = s.scope.Supplied(ctx, roboguice.TypeIDOf[*mock.Activity]())
	s.False(ok)
}

func (s *ScopeTestSuite) TestShutdownOnLastExit() {
	inj, err := roboguice.Configure(roboguice.NewUsageRegistry(), mock.Lookup(), roboguice.Capabilities{},
		[]roboguice.Definition{
			roboguice.ContextSingleton(func(*roboguice.ContainerContext) (*mock.Listener, error) {
				return &mock.Listener{Name: "preferences"}, nil
			}),
		},
		roboguice.WithScope(s.scope),
	)
	s.Require().NoError(err)

	activity := &mock.Activity{Name: "main"}
	ctx, outer, err := s.scope.Enter(nil, activity)
	s.Require().NoError(err)
	listener, err := roboguice.Get[*mock.Listener](ctx, inj)
	s.Require().NoError(err)

	nestedCtx, inner, err := s.scope.Enter(ctx, activity)
	s.Require().NoError(err)
	same, err := roboguice.Get[*mock.Listener](nestedCtx, inj)
	s.Require().NoError(err)
	s.Same(listener, same)

	inner.Exit()
	s.Zero(listener.Shutdowns(), "nested exit must not shut down shared instances")

	outer.Exit()
	s.Equal(1, listener.Shutdowns())
	outer.Exit()
	inner.Exit()
	s.Equal(1, listener.Shutdowns())
}

func (s *ScopeTestSuite) TestHandleIsNotShutDown() {
	handle := &mock.Listener{Name: "handle"}
	ctx, sess, err := s.scope.Enter(nil, handle)
	s.Require().NoError(err)
	_, err = s.scope.GetOrCreate(ctx, handlerID, s.newHandler)
	s.Require().NoError(err)

	sess.Exit()
	s.Zero(handle.Shutdowns(), "the handle belongs to the host")
}

func (s *ScopeTestSuite) TestShutdownFailuresAreIsolated() {
	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	s.Require().NoError(err)

	var logged []string
	log := funcr.New(func(prefix, args string) {
		logged = append(logged, args)
	}, funcr.Options{})
	scope := roboguice.NewContextScope(roboguice.WithLogger(log), roboguice.WithMetrics(collector))

	var released []string
	listeners := []*mock.Listener{
		{Name: "first", Fail: errors.New("not registered"), Released: &released},
		{Name: "second", Panic: true, Released: &released},
		{Name: "third", Released: &released},
	}

	ctx, sess, err := scope.Enter(nil, &mock.Activity{Name: "main"})
	s.Require().NoError(err)
	for _, l := range listeners {
		_, err := scope.GetOrCreate(ctx, roboguice.TypeID(l.Name), func() (any, error) { return l, nil })
		s.Require().NoError(err)
	}

	sess.Exit()
	s.Equal([]string{"third", "second", "first"}, released, "instances shut down in reverse creation order")
	for _, l := range listeners {
		s.Equal(1, l.Shutdowns(), l.Name)
	}

	s.Require().Len(logged, 2)
	s.Contains(logged[0], "instance shutdown panicked")
	s.Contains(logged[1], "not registered")

	expected := `
# HELP roboguice_shutdown_failures_total Context-bound instances whose shutdown failed or panicked
# TYPE roboguice_shutdown_failures_total counter
roboguice_shutdown_failures_total 2
`
	s.NoError(testutil.GatherAndCompare(reg, strings.NewReader(expected), "roboguice_shutdown_failures_total"))
}

func TestScopeSuite(t *testing.T) {
	suite.Run(t, new(ScopeTestSuite))
}
