package corehost

import (
	"testing"
	"unsafe"

	"github.com/retrohost/corehost/env"
	"github.com/retrohost/corehost/input"
	"github.com/retrohost/corehost/video"
)

func TestTranslatePixelFormat(t *testing.T) {
	cases := []struct {
		in   env.PixelFormat
		want video.PixelFormat
	}{
		{env.PixelFormatXRGB8888, video.FormatXRGB8888},
		{env.PixelFormat0RGB1555, video.FormatXRGB1555},
		{env.PixelFormatRGB565, video.FormatRGB565},
		{env.PixelFormatUnknown, video.FormatRGB565},
	}
	for _, c := range cases {
		if got := translatePixelFormat(c.in); got != c.want {
			t.Errorf("translatePixelFormat(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSplitPipe(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a|b|c", []string{"a", "b", "c"}},
		{"single", []string{"single"}},
		{"", []string{""}},
	}
	for _, c := range cases {
		got := splitPipe(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("splitPipe(%q) = %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("splitPipe(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func TestCString(t *testing.T) {
	if got := cString(nil); got != "" {
		t.Fatalf("cString(nil) = %q, want empty", got)
	}

	b := append([]byte("hello"), 0)
	got := cString(unsafe.Pointer(&b[0]))
	if got != "hello" {
		t.Fatalf("cString(...) = %q, want \"hello\"", got)
	}
}

func TestHost_AudioSampleAccumulatesBatch(t *testing.T) {
	h := &Host{}
	h.handleAudioSample(1, 2)
	h.handleAudioSample(3, 4)

	want := []int16{1, 2, 3, 4}
	if len(h.audioBatch) != len(want) {
		t.Fatalf("audioBatch = %v, want %v", h.audioBatch, want)
	}
	for i := range want {
		if h.audioBatch[i] != want[i] {
			t.Errorf("audioBatch[%d] = %d, want %d", i, h.audioBatch[i], want[i])
		}
	}
	if h.sampleCount != 2 {
		t.Fatalf("sampleCount = %d, want 2", h.sampleCount)
	}
}

func TestHost_InputStateRoutesToStore(t *testing.T) {
	h := &Host{inputs: input.NewStore()}
	if got := h.handleInputState(0, 1, 0, 0); got != 0 {
		t.Fatalf("handleInputState default = %d, want 0", got)
	}
}

func TestHost_LogfIsNoopWithoutLogger(t *testing.T) {
	h := &Host{}
	h.logf("should not panic: %d", 42)
}
