package wallet

import (
	"database/sql"
	"testing"
)

func TestMetadataRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		meta metadata
	}{
		{"nil", nil},
		{"empty", metadata{}},
		{"values", metadata{"provider": "phantom", "reconciled": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := tt.meta.Value()
			if err != nil {
				t.Fatalf("Value: %v", err)
			}

			var got metadata
			if err := got.Scan(value); err != nil {
				t.Fatalf("Scan: %v", err)
			}

			if len(got) != len(tt.meta) {
				t.Errorf("round trip = %v, want %v", got, tt.meta)
			}

			for k := range tt.meta {
				if _, ok := got[k]; !ok {
					t.Errorf("missing key %q after round trip", k)
				}
			}
		})
	}
}

func TestMetadataScanInputs(t *testing.T) {
	var m metadata

	if err := m.Scan(nil); err != nil {
		t.Errorf("Scan(nil): %v", err)
	}

	if m != nil {
		t.Errorf("null column = %v, want nil", m)
	}

	if err := m.Scan(`{"a":1}`); err != nil {
		t.Errorf("Scan(string): %v", err)
	}

	if err := m.Scan(42); err == nil {
		t.Error("Scan(int) succeeded, want error")
	}
}

func TestToNullString(t *testing.T) {
	if got := toNullString(""); got.Valid {
		t.Errorf("empty string = %+v, want invalid", got)
	}

	want := sql.NullString{String: "ref", Valid: true}
	if got := toNullString("ref"); got != want {
		t.Errorf("toNullString(ref) = %+v, want %+v", got, want)
	}
}
