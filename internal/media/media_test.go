package media

import (
	"errors"
	"testing"
)

func TestResolveTarget(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  Size
		char Aspect
		want Target
		out  Size
	}{
		{
			name: "width only square cells",
			src:  Size{1920, 1080},
			char: SquareAspect,
			want: Target{Width: 80, WidthSet: true},
			out:  Size{80, 45},
		},
		{
			name: "height only square cells",
			src:  Size{1920, 1080},
			char: SquareAspect,
			want: Target{Height: 45, HeightSet: true},
			out:  Size{80, 45},
		},
		{
			name: "both given verbatim",
			src:  Size{1920, 1080},
			char: SquareAspect,
			want: Target{Width: 10, Height: 200, WidthSet: true, HeightSet: true},
			out:  Size{10, 200},
		},
		{
			name: "width only tall cells",
			src:  Size{1920, 1080},
			char: Aspect{CharWidth: 1, CharHeight: 2},
			want: Target{Width: 80, WidthSet: true},
			out:  Size{80, 90},
		},
		{
			name: "truncation",
			src:  Size{100, 99},
			char: SquareAspect,
			want: Target{Width: 10, WidthSet: true},
			out:  Size{10, 9},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ResolveTarget(tc.src, tc.char, tc.want)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.out {
				t.Errorf("ResolveTarget = %+v, want %+v", got, tc.out)
			}
		})
	}
}

func TestResolveTarget_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		want Target
		err  error
	}{
		{"neither set", Target{}, ErrNoTarget},
		{"zero width", Target{Width: 0, WidthSet: true}, ErrZeroTarget},
		{"zero height", Target{Height: 0, HeightSet: true}, ErrZeroTarget},
		{"zero width with valid height", Target{Width: 0, Height: 10, WidthSet: true, HeightSet: true}, ErrZeroTarget},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ResolveTarget(Size{1920, 1080}, SquareAspect, tc.want)
			if !errors.Is(err, tc.err) {
				t.Errorf("err = %v, want %v", err, tc.err)
			}
		})
	}
}

func TestResolveTarget_ZeroDerived(t *testing.T) {
	t.Parallel()
	// A 1-wide target of a wide source collapses the derived height to zero.
	_, err := ResolveTarget(Size{1920, 2}, SquareAspect, Target{Width: 1, WidthSet: true})
	if !errors.Is(err, ErrZeroTarget) {
		t.Errorf("err = %v, want ErrZeroTarget", err)
	}
}

func TestParseAspect(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Aspect
		wantErr bool
	}{
		{"", SquareAspect, false},
		{"1x1", SquareAspect, false},
		{"8x16", Aspect{8, 16}, false},
		{"8", Aspect{}, true},
		{"8x", Aspect{}, true},
		{"x16", Aspect{}, true},
		{"0x16", Aspect{}, true},
		{"8x0", Aspect{}, true},
		{"axb", Aspect{}, true},
		{"8x16x2", Aspect{}, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAspect(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrBadAspect) {
					t.Fatalf("err = %v, want ErrBadAspect", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("ParseAspect(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestFrameBytes(t *testing.T) {
	t.Parallel()
	if got := (Size{Width: 80, Height: 45}).FrameBytes(); got != 80*45*4 {
		t.Errorf("FrameBytes = %d, want %d", got, 80*45*4)
	}
}
