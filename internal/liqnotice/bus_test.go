package liqnotice

import "testing"

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	b := NewBus()
	ch1, unsub1 := b.Subscribe(1)
	defer unsub1()
	ch2, unsub2 := b.Subscribe(1)
	defer unsub2()

	b.Publish(Event{Kind: Fill, Symbol: "BTCUSDT", Quantity: 1})

	e1 := <-ch1
	e2 := <-ch2
	if e1.Symbol != "BTCUSDT" || e2.Symbol != "BTCUSDT" {
		t.Fatalf("expected both subscribers to receive the event, got %+v %+v", e1, e2)
	}
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	b := NewBus()
	ch, unsub := b.Subscribe(1)
	defer unsub()

	done := make(chan struct{})
	go func() {
		b.Publish(Event{Kind: Fill})
		b.Publish(Event{Kind: Fill}) // buffer is full; must drop, not block
		close(done)
	}()
	<-done

	<-ch // drain the one event that made it through
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()
	ch, unsub := b.Subscribe(1)
	unsub()

	b.Publish(Event{Kind: Liquidation})

	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after unsubscribe")
	}
}

func TestEventKindString(t *testing.T) {
	if Fill.String() != "fill" || Liquidation.String() != "liquidation" {
		t.Fatalf("unexpected EventKind.String() values")
	}
}
