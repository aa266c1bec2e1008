package mock

import (
	"testing"
	"time"
)

func TestWriteReadRoundTrip(t *testing.T) {
	host, device := NewPair()

	if _, err := host.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 16)
	n, err := device.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "hello" {
		t.Fatalf("Read = %q, want hello", buf[:n])
	}
}

func TestReadDeadlineExceeded(t *testing.T) {
	host, _ := NewPair()
	host.SetDeadline(time.Now().Add(20 * time.Millisecond))

	buf := make([]byte, 4)
	_, err := host.Read(buf)
	if err != ErrDeadlineExceeded {
		t.Fatalf("err = %v, want ErrDeadlineExceeded", err)
	}
}

func TestCloseUnblocksRead(t *testing.T) {
	host, _ := NewPair()

	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 4)
		_, err := host.Read(buf)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	host.Close()

	select {
	case err := <-done:
		if err != ErrClosed {
			t.Fatalf("err = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Read did not unblock after Close")
	}
}
