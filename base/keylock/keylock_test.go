package keylock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type KeyLockTestSuite struct {
	suite.Suite
	km *KeyedMutex
}

func TestKeyLockTestSuite(t *testing.T) {
	suite.Run(t, new(KeyLockTestSuite))
}

func (s *KeyLockTestSuite) SetupTest() {
	s.km = New()
}

func (s *KeyLockTestSuite) TestMutualExclusion() {
	const workers = 50
	counter := 0
	wg := sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := s.km.Lock(context.Background(), "a")
			s.Require().NoError(err)
			defer release()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()
	s.Equal(workers, counter)
	s.Equal(0, s.km.Len())
}

func (s *KeyLockTestSuite) TestDifferentKeysDoNotContend() {
	releaseA, err := s.km.Lock(context.Background(), "a")
	s.Require().NoError(err)
	defer releaseA()

	c, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	releaseB, err := s.km.Lock(c, "b")
	s.Require().NoError(err)
	releaseB()
	s.Equal(1, s.km.Len())
}

func (s *KeyLockTestSuite) TestContextTimeout() {
	release, err := s.km.Lock(context.Background(), "a")
	s.Require().NoError(err)

	c, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.km.Lock(c, "a")
	s.ErrorIs(err, context.DeadlineExceeded)

	release()
	// second release is a no-op
	release()
	s.Equal(0, s.km.Len())
}

func (s *KeyLockTestSuite) TestTryLock() {
	release, ok := s.km.TryLock("a")
	s.True(ok)

	_, ok = s.km.TryLock("a")
	s.False(ok)

	release()
	release2, ok := s.km.TryLock("a")
	s.True(ok)
	release2()
}
