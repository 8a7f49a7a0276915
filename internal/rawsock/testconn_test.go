package rawsock

import "testing"

func TestTestConnPairRoundTrip(t *testing.T) {
	a, b := NewTestConnPair()
	defer a.Close()
	defer b.Close()

	if err := a.Send([]byte("hello")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := b.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestTestConnCloseUnblocksRecv(t *testing.T) {
	a, b := NewTestConnPair()
	defer a.Close()

	done := make(chan error, 1)
	go func() {
		_, err := b.Recv()
		done <- err
	}()

	b.Close()
	if err := <-done; err != ErrClosed {
		t.Fatalf("got %v, want ErrClosed", err)
	}
}

func TestTestConnSendAfterCloseIsError(t *testing.T) {
	a, b := NewTestConnPair()
	defer b.Close()

	a.Close()
	if err := a.Send([]byte("x")); err != ErrClosed {
		t.Fatalf("got %v, want ErrClosed", err)
	}
}
