package rga

import (
	"bytes"
	"testing"
)

func TestVersionMap_UpdateIsMonotonic(t *testing.T) {
	vm := NewVersionMap(1)
	vm.Update(2, 5)
	vm.Update(2, 3) // lower value must not regress

	if got := vm.Get(2); got != 5 {
		t.Fatalf("Get(2) = %d, want 5", got)
	}
}

func TestVersionMap_Clone_IsIndependent(t *testing.T) {
	vm := NewVersionMap(1)
	vm.Update(1, 10)

	clone := vm.Clone()
	vm.Update(1, 20)

	if got := clone.Get(1); got != 10 {
		t.Fatalf("clone.Get(1) = %d, want 10 (unaffected by later mutation)", got)
	}
}

func TestVersionMap_Merge_TakesPointwiseMax(t *testing.T) {
	a := NewVersionMap(1)
	a.Update(1, 5)
	a.Update(2, 2)

	b := NewVersionMap(2)
	b.Update(1, 3)
	b.Update(2, 8)

	a.Merge(b)
	if got := a.Get(1); got != 5 {
		t.Fatalf("Get(1) = %d, want 5", got)
	}
	if got := a.Get(2); got != 8 {
		t.Fatalf("Get(2) = %d, want 8", got)
	}
}

func TestMinimum(t *testing.T) {
	tests := []struct {
		name string
		make func() []VersionMap
		want map[uint64]uint64
	}{
		{
			name: "no maps yields empty",
			make: func() []VersionMap { return nil },
			want: map[uint64]uint64{},
		},
		{
			name: "absent entries count as zero",
			make: func() []VersionMap {
				a := NewVersionMap(1)
				a.Update(1, 10)
				a.Update(2, 10)
				b := NewVersionMap(2)
				b.Update(2, 10) // replica 1 absent here, counts as 0
				return []VersionMap{a, b}
			},
			want: map[uint64]uint64{2: 10},
		},
		{
			name: "takes minimum per replica",
			make: func() []VersionMap {
				a := NewVersionMap(1)
				a.Update(1, 7)
				a.Update(2, 3)
				b := NewVersionMap(2)
				b.Update(1, 4)
				b.Update(2, 9)
				return []VersionMap{a, b}
			},
			want: map[uint64]uint64{1: 4, 2: 3},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Minimum(tc.make()...)
			for r, want := range tc.want {
				if v := got.Get(r); v != want {
					t.Errorf("Get(%d) = %d, want %d", r, v, want)
				}
			}
		})
	}
}

func TestVersionMap_EncodeDecode_RoundTrip(t *testing.T) {
	vm := NewVersionMap(1)
	vm.Update(1, 300) // large enough to need more than one varint byte
	vm.Update(2, 7)

	var buf bytes.Buffer
	if err := vm.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if g := got.Get(1); g != 300 {
		t.Errorf("Get(1) = %d, want 300", g)
	}
	if g := got.Get(2); g != 7 {
		t.Errorf("Get(2) = %d, want 7", g)
	}
}

func TestVersionMap_Decode_DoesNotReadPastItsOwnEncoding(t *testing.T) {
	vm := NewVersionMap(1)
	vm.Update(1, 42)

	var buf bytes.Buffer
	if err := vm.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	buf.Write([]byte{0xAA, 0xBB, 0xCC}) // trailing data Decode must not consume

	if _, err := Decode(&buf); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := buf.Bytes(); !bytes.Equal(got, []byte{0xAA, 0xBB, 0xCC}) {
		t.Fatalf("remaining bytes = %v, want [170 187 204] untouched", got)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b func() VersionMap
		want Ordering
	}{
		{
			name: "equal maps",
			a:    func() VersionMap { return NewVersionMap(1) },
			b:    func() VersionMap { return NewVersionMap(1) },
			want: Equal,
		},
		{
			name: "a strictly less",
			a: func() VersionMap {
				v := NewVersionMap(1)
				v.Update(1, 1)
				return v
			},
			b: func() VersionMap {
				v := NewVersionMap(1)
				v.Update(1, 5)
				return v
			},
			want: Less,
		},
		{
			name: "a strictly greater",
			a: func() VersionMap {
				v := NewVersionMap(1)
				v.Update(1, 5)
				return v
			},
			b: func() VersionMap {
				v := NewVersionMap(1)
				v.Update(1, 1)
				return v
			},
			want: Greater,
		},
		{
			name: "concurrent",
			a: func() VersionMap {
				v := NewVersionMap(1)
				v.Update(1, 5)
				v.Update(2, 1)
				return v
			},
			b: func() VersionMap {
				v := NewVersionMap(1)
				v.Update(1, 1)
				v.Update(2, 5)
				return v
			},
			want: Concurrent,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compare(tc.a(), tc.b()); got != tc.want {
				t.Errorf("Compare() = %v, want %v", got, tc.want)
			}
		})
	}
}
