package protocol

import (
	"bytes"
	"errors"
	"testing"
)

type recordingSender struct {
	frames [][]byte
}

func (r *recordingSender) Send(b []byte) {
	r.frames = append(r.frames, b)
}

func TestNewFireFrame_Layout(t *testing.T) {
	f := NewFireFrame(2)
	want := []byte{0x4E, 0x02, 0x4C}
	if !bytes.Equal(f.Bytes(), want) {
		t.Fatalf("frame = % X, want % X", f.Bytes(), want)
	}
	if f.PulseTenths() != 2 {
		t.Fatalf("PulseTenths = %d, want 2", f.PulseTenths())
	}
	if f.String() != "4E 02 4C" {
		t.Fatalf("String = %q", f.String())
	}
}

func TestFrameBytes_ReturnsCopy(t *testing.T) {
	f := NewFireFrame(9)
	b := f.Bytes()
	b[1] = 0xFF
	if f.PulseTenths() != 9 {
		t.Fatalf("mutating Bytes() changed the frame")
	}
}

func TestParseFrame(t *testing.T) {
	cases := []struct {
		name    string
		in      []byte
		wantErr error
	}{
		{"valid", []byte{'N', 200, 'L'}, nil},
		{"max pulse", []byte{'N', 0xFF, 'L'}, nil},
		{"short", []byte{'N', 1}, ErrFrameSize},
		{"long", []byte{'N', 1, 'L', 0}, ErrFrameSize},
		{"bad start", []byte{'X', 1, 'L'}, ErrFrameMarker},
		{"bad end", []byte{'N', 1, 'X'}, ErrFrameMarker},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ParseFrame(tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(f.Bytes(), tc.in) {
				t.Fatalf("parsed % X, want % X", f.Bytes(), tc.in)
			}
		})
	}
}

func TestEncoder_FireSendsExactlyOneFrame(t *testing.T) {
	rs := &recordingSender{}
	enc := NewEncoder(rs)

	f := enc.Fire(2)
	if len(rs.frames) != 1 {
		t.Fatalf("sent %d frames, want 1", len(rs.frames))
	}
	if !bytes.Equal(rs.frames[0], []byte{0x4E, 0x02, 0x4C}) {
		t.Fatalf("sent % X", rs.frames[0])
	}
	if f.PulseTenths() != 2 || enc.Sent() != 1 {
		t.Fatalf("frame=%v sent=%d", f, enc.Sent())
	}

	enc.Fire(7)
	if len(rs.frames) != 2 || enc.Sent() != 2 {
		t.Fatalf("second fire: frames=%d sent=%d", len(rs.frames), enc.Sent())
	}
}
