package region

import (
	"testing"
)

func TestMapReadWrite(t *testing.T) {
	data, cleanup, err := Map(4096)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	defer func() {
		if cleanupErr := cleanup(); cleanupErr != nil {
			t.Fatalf("cleanup: %v", cleanupErr)
		}
	}()
	if len(data) != 4096 {
		t.Fatalf("len mismatch: got %d want 4096", len(data))
	}
	for i, b := range data {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: 0x%x", i, b)
		}
	}
	data[0], data[4095] = 0xde, 0xad
	if data[0] != 0xde || data[4095] != 0xad {
		t.Fatalf("write did not stick")
	}
}

func TestMapOddSize(t *testing.T) {
	data, cleanup, err := Map(100)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(data) != 100 {
		t.Fatalf("len mismatch: got %d want 100", len(data))
	}
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if err := cleanup(); err != nil {
		t.Fatalf("second cleanup: %v", err)
	}
}

func TestMapInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, _, err := Map(size); err == nil {
			t.Fatalf("Map(%d): expected error", size)
		}
	}
}
