package eventbus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/blescan/internal/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BusTestSuite struct {
	suite.Suite
	logger *logrus.Logger
	bus    *eventbus.Bus[int]
}

func (suite *BusTestSuite) SetupTest() {
	suite.logger = logrus.New()
	suite.logger.SetLevel(logrus.DebugLevel)
	suite.bus = eventbus.New[int](16, suite.logger)
}

func (suite *BusTestSuite) TearDownTest() {
	suite.bus.Close()
}

func (suite *BusTestSuite) next(sub *eventbus.Subscription[int]) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return sub.Next(ctx)
}

func (suite *BusTestSuite) TestOrderedDeliveryToEverySubscriber() {
	// GOAL: Verify each subscriber receives every event in publish order
	//
	// TEST SCENARIO: two subscribers → publish 1..5 → both read 1..5 in order

	a := suite.bus.Subscribe()
	b := suite.bus.Subscribe()
	suite.Equal(2, suite.bus.Len())

	for i := 1; i <= 5; i++ {
		suite.bus.Publish(i)
	}

	for _, sub := range []*eventbus.Subscription[int]{a, b} {
		for want := 1; want <= 5; want++ {
			got, err := suite.next(sub)
			suite.Require().NoError(err)
			suite.Equal(want, got, "events MUST arrive in publish order")
		}
	}
}

func (suite *BusTestSuite) TestLateSubscriberMissesEarlierEvents() {
	suite.bus.Publish(1)
	sub := suite.bus.Subscribe()
	suite.bus.Publish(2)

	got, err := suite.next(sub)
	suite.Require().NoError(err)
	suite.Equal(2, got)
}

func (suite *BusTestSuite) TestUnsubscribeDoesNotAffectOthers() {
	a := suite.bus.Subscribe()
	b := suite.bus.Subscribe()

	a.Close()
	a.Close()
	suite.Equal(1, suite.bus.Len())

	suite.bus.Publish(7)

	got, err := suite.next(b)
	suite.Require().NoError(err)
	suite.Equal(7, got)

	_, err = suite.next(a)
	suite.ErrorIs(err, eventbus.ErrClosed)
}

func (suite *BusTestSuite) TestNextHonoursContext() {
	sub := suite.bus.Subscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := sub.Next(ctx)
	suite.ErrorIs(err, context.DeadlineExceeded)
}

func (suite *BusTestSuite) TestCloseDrainsQueuedEvents() {
	sub := suite.bus.Subscribe()
	suite.bus.Publish(1)
	suite.bus.Publish(2)
	suite.bus.Close()
	suite.bus.Publish(3)

	got, err := suite.next(sub)
	suite.Require().NoError(err)
	suite.Equal(1, got)
	got, err = suite.next(sub)
	suite.Require().NoError(err)
	suite.Equal(2, got)

	_, err = suite.next(sub)
	suite.ErrorIs(err, eventbus.ErrClosed, "closed and drained subscription MUST report ErrClosed")

	late := suite.bus.Subscribe()
	_, err = suite.next(late)
	suite.ErrorIs(err, eventbus.ErrClosed, "subscribing to a closed bus MUST yield a closed subscription")
}

func (suite *BusTestSuite) TestBlockedReaderWakesOnPublish() {
	sub := suite.bus.Subscribe()

	result := make(chan int, 1)
	go func() {
		v, err := suite.next(sub)
		if err == nil {
			result <- v
		}
	}()

	time.Sleep(10 * time.Millisecond)
	suite.bus.Publish(42)

	select {
	case v := <-result:
		suite.Equal(42, v)
	case <-time.After(time.Second):
		suite.Fail("blocked reader MUST wake up on publish")
	}
}

func TestBusTestSuite(t *testing.T) {
	suite.Run(t, new(BusTestSuite))
}

func TestBus_SlowSubscriberLosesOldest(t *testing.T) {
	bus := eventbus.New[int](4, nil)
	defer bus.Close()

	sub := bus.Subscribe()
	for i := 0; i < 20; i++ {
		bus.Publish(i)
	}

	assert.Positive(t, sub.Overwritten(), "overflow MUST be counted")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	last := -1
	for {
		tctx, tcancel := context.WithTimeout(ctx, 20*time.Millisecond)
		v, err := sub.Next(tctx)
		tcancel()
		if err != nil {
			break
		}
		assert.Greater(t, v, last, "surviving events MUST stay ordered")
		last = v
	}
	assert.Equal(t, 19, last, "newest event MUST survive")
}

func TestBus_ConcurrentPublishAndSubscribe(t *testing.T) {
	bus := eventbus.New[int](64, nil)
	defer bus.Close()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				bus.Publish(i)
			}
		}()
	}
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := bus.Subscribe()
			defer sub.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
			defer cancel()
			_, _ = sub.Next(ctx)
		}()
	}
	wg.Wait()

	require.Equal(t, 0, bus.Len(), "closed subscribers MUST be removed")
}
