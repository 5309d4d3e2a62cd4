package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuildReadCmd(t *testing.T) {
	tests := []struct {
		name    string
		first   int
		last    int
		want    []byte
		wantErr bool
	}{
		{
			name:  "single page",
			first: 0,
			last:  0,
			want:  []byte{CmdRead, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:  "multi page little endian",
			first: 0x0123,
			last:  0x0126,
			want:  []byte{CmdRead, 0x23, 0x01, 0x26, 0x01, 0x00},
		},
		{
			name:  "highest page",
			first: MaxPageIndex,
			last:  MaxPageIndex,
			want:  []byte{CmdRead, 0xFF, 0xFF, 0xFF, 0xFF, 0x00},
		},
		{
			name:    "reversed range",
			first:   4,
			last:    3,
			wantErr: true,
		},
		{
			name:    "negative page",
			first:   -1,
			last:    0,
			wantErr: true,
		},
		{
			name:    "page out of range",
			first:   0,
			last:    MaxPageIndex + 1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := BuildReadCmd(tt.first, tt.last)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("error = %v, want InvalidArgument", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(frame, tt.want) {
				t.Errorf("frame = % X, want % X", frame, tt.want)
			}
		})
	}
}

func TestBuildKeepaliveCmd(t *testing.T) {
	frame, err := BuildKeepaliveCmd(0x07FF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{CmdKeepalive, 0xFF, 0x07, 0x00}
	if !bytes.Equal(frame, want) {
		t.Errorf("frame = % X, want % X", frame, want)
	}

	if _, err := BuildKeepaliveCmd(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("error = %v, want InvalidArgument", err)
	}
}

func TestFixedCommands(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		want  []byte
	}{
		{"version", BuildVersionCmd(), []byte{0x90, 0x00}},
		{"init", BuildInitCmd(), []byte{0x55, 0x00}},
		{"quit", BuildQuitCmd(), []byte{0x98, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !bytes.Equal(tt.frame, tt.want) {
				t.Errorf("frame = % X, want % X", tt.frame, tt.want)
			}
		})
	}
}

func TestReadAnswerSize(t *testing.T) {
	if got := ReadAnswerSize(1); got != 18 {
		t.Errorf("ReadAnswerSize(1) = %d, want 18", got)
	}
	if got := ReadAnswerSize(DefaultMultiPage); got != 69 {
		t.Errorf("ReadAnswerSize(%d) = %d, want 69", DefaultMultiPage, got)
	}
}
