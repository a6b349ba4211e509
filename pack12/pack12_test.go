package pack12

import "testing"

func TestPack12KnownValue(t *testing.T) {
	// 0x01, 0x02, 0x03 -> value = 0x030201, low = 0x201, high = 0x030.
	got, err := Pack12([]byte{0x01, 0x02, 0x03})
	if err != nil {
		t.Fatalf("Pack12 failed: %v", err)
	}
	want := []uint16{0x201, 0x030}
	if len(got) != len(want) {
		t.Fatalf("Pack12 returned %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Pack12[%d] = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestPack12PadsToMultipleOfThree(t *testing.T) {
	for n := 0; n < 9; n++ {
		data := make([]byte, n)
		out, err := Pack12(data)
		if err != nil {
			t.Fatalf("Pack12(len=%d) failed: %v", n, err)
		}
		padded := n + (3-n%3)%3
		wantLen := padded / 3 * 2
		if len(out) != wantLen {
			t.Errorf("Pack12(len=%d) returned %d values, want %d", n, len(out), wantLen)
		}
	}
}

func TestPack12ValuesAreTwelveBits(t *testing.T) {
	data := make([]byte, 300)
	for i := range data {
		data[i] = byte(i * 7)
	}
	out, err := Pack12(data)
	if err != nil {
		t.Fatalf("Pack12 failed: %v", err)
	}
	for _, v := range out {
		if v > 0x0FFF {
			t.Fatalf("value %#x exceeds 12 bits", v)
		}
	}
}

func TestPack12RejectsOversizedInput(t *testing.T) {
	if _, err := Pack12(make([]byte, maxDataLen+1)); err == nil {
		t.Fatal("expected Pack12 to reject input beyond maxDataLen")
	}
}
