package mem

import (
	"errors"
	"testing"
)

func TestReadWriteRoundTrip(t *testing.T) {
	m := New()
	addrs := []uint32{0, 4, 0x100, 0xFFFC}
	values := []uint32{0, 1, 0xDEADBEEF, 0xFFFFFFFF}
	for _, addr := range addrs {
		for _, v := range values {
			if err := m.WriteWord(addr, v); err != nil {
				t.Fatalf("WriteWord(%#x, %#x): %v", addr, v, err)
			}
			got, err := m.ReadWord(addr)
			if err != nil {
				t.Fatalf("ReadWord(%#x): %v", addr, err)
			}
			if got != v {
				t.Errorf("round trip at %#x: got %#x, want %#x", addr, got, v)
			}
		}
	}
}

func TestLittleEndianLayout(t *testing.T) {
	m := New()
	if err := m.WriteWord(0x200, 0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	want := []byte{0xEF, 0xBE, 0xAD, 0xDE}
	for k, w := range want {
		if got := m.ByteAt(0x200 + uint32(k)); got != w {
			t.Errorf("byte at offset %d: got %#x, want %#x", k, got, w)
		}
	}
}

func TestAlignmentError(t *testing.T) {
	m := New()
	if _, err := m.ReadWord(0x102); !errors.Is(err, ErrAlignment) {
		t.Errorf("ReadWord(0x102) = %v, want ErrAlignment", err)
	}
}

func TestBoundsError(t *testing.T) {
	m := New()
	if _, err := m.ReadWord(0x10000); !errors.Is(err, ErrBounds) {
		t.Errorf("ReadWord(0x10000) = %v, want ErrBounds", err)
	}
	if _, err := m.ReadWord(0xFFFC); err != nil {
		t.Errorf("ReadWord(0xFFFC) should succeed, got %v", err)
	}
}

func TestZeroInitialized(t *testing.T) {
	m := New()
	v, err := m.ReadWord(0x400)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0 {
		t.Errorf("fresh memory at 0x400 = %#x, want 0", v)
	}
}
