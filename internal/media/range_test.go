package media

import "testing"

func TestParseRange(t *testing.T) {
	const size = 1000

	tests := []struct {
		header  string
		want    *ByteRange
		wantErr error
	}{
		{"", nil, nil},
		{"bytes=0-499", &ByteRange{0, 499}, nil},
		{"bytes=500-999", &ByteRange{500, 999}, nil},
		{"bytes=500-", &ByteRange{500, 999}, nil},
		{"bytes=-200", &ByteRange{800, 999}, nil},
		{"bytes=-2000", &ByteRange{0, 999}, nil},
		{"bytes=0-1999", &ByteRange{0, 999}, nil},
		{"bytes=0-0", &ByteRange{0, 0}, nil},
		{"bytes=0-499,600-699", &ByteRange{0, 499}, nil},
		{"bytes=1000-", nil, ErrUnsatisfiable},
		{"bytes=700-600", nil, ErrUnsatisfiable},
		{"items=0-499", nil, ErrInvalidRange},
		{"bytes=abc-499", nil, ErrInvalidRange},
		{"bytes=0-xyz", nil, ErrInvalidRange},
		{"bytes=-0", nil, ErrInvalidRange},
		{"bytes=499", nil, ErrInvalidRange},
	}

	for _, tc := range tests {
		got, err := ParseRange(tc.header, size)
		if err != tc.wantErr {
			t.Errorf("ParseRange(%q) err = %v, want %v", tc.header, err, tc.wantErr)
			continue
		}
		if tc.want == nil {
			if got != nil {
				t.Errorf("ParseRange(%q) = %+v, want nil", tc.header, got)
			}
			continue
		}
		if got == nil || *got != *tc.want {
			t.Errorf("ParseRange(%q) = %+v, want %+v", tc.header, got, tc.want)
		}
	}
}

func TestByteRange_Length(t *testing.T) {
	r := ByteRange{Start: 100, End: 199}
	if r.Length() != 100 {
		t.Errorf("Length = %d, want 100", r.Length())
	}
	if got := r.ContentRange(1000); got != "bytes 100-199/1000" {
		t.Errorf("ContentRange = %q", got)
	}
}
