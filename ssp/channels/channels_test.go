package channels

import "testing"

func TestConfigureAndReadBack(t *testing.T) {
	tbl, err := Lock()
	if err != nil {
		t.Fatal(err)
	}
	defer tbl.Unlock()

	if err := tbl.Configure([]uint32{5, 10, 20, 50}); err != nil {
		t.Fatal(err)
	}

	if tbl.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", tbl.Count())
	}

	v, ok := tbl.Value(3)
	if !ok || v != 20 {
		t.Fatalf("Value(3) = %d,%v want 20,true", v, ok)
	}

	if _, ok := tbl.Value(5); ok {
		t.Fatal("Value(5) should be out of range for a 4-channel table")
	}

	got := tbl.Values()
	want := []uint32{5, 10, 20, 50}
	if len(got) != len(want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestConfigureRejectsOverflow(t *testing.T) {
	tbl, err := Lock()
	if err != nil {
		t.Fatal(err)
	}
	defer tbl.Unlock()

	oversized := make([]uint32, MaxChannels+1)
	if err := tbl.Configure(oversized); err == nil {
		t.Fatal("expected error configuring more than MaxChannels")
	}
}

func TestLockIsMutuallyExclusive(t *testing.T) {
	tbl, err := Lock()
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		second, err := Lock()
		if err != nil {
			t.Error(err)
		} else {
			second.Unlock()
		}
		close(done)
	}()

	tbl.Unlock()
	<-done
}
