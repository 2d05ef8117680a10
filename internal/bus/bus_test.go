package bus

import (
	"testing"
	"time"
)

func TestPublishReachesSubscriber(t *testing.T) {
	b := New()
	defer b.Close()

	ch, cancel := b.Subscribe("questions")
	defer cancel()

	b.Publish("questions")

	select {
	case topic := <-ch:
		if topic != "questions" {
			t.Errorf("Expected topic 'questions', got %s", topic)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected delivery, got none")
	}
}

func TestPublishIsScopedToTopic(t *testing.T) {
	b := New()
	defer b.Close()

	ch, cancel := b.Subscribe("spreads")
	defer cancel()

	b.Publish("questions")

	select {
	case <-ch:
		t.Error("Subscriber received a delivery for another topic")
	default:
	}
}

func TestCancelStopsDeliveries(t *testing.T) {
	b := New()
	defer b.Close()

	ch, cancel := b.Subscribe("questions")
	cancel()

	// Channel must be closed after cancel.
	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after cancel")
	}

	// Publishing after cancel must not panic.
	b.Publish("questions")

	// Cancel is safe to call twice.
	cancel()
}

func TestSlowConsumerDoesNotBlockPublisher(t *testing.T) {
	b := New()
	defer b.Close()

	_, cancel := b.Subscribe("questions")
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Well past the buffer size; extra deliveries are dropped.
		for i := 0; i < 100; i++ {
			b.Publish("questions")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}
}

func TestCloseShutsDownSubscribers(t *testing.T) {
	b := New()

	ch, cancel := b.Subscribe("questions")
	defer cancel()

	b.Close()

	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after bus shutdown")
	}

	// Subscribing after close yields an already-closed channel.
	late, lateCancel := b.Subscribe("questions")
	defer lateCancel()
	if _, ok := <-late; ok {
		t.Error("Expected closed channel from post-close subscribe")
	}
}
