package retromodule

import (
	"errors"
	"strings"
	"testing"
)

func TestRequiredSymbols_CoversFullABI(t *testing.T) {
	want := []string{
		"retro_init", "retro_deinit", "retro_api_version",
		"retro_get_system_info", "retro_get_system_av_info",
		"retro_set_environment", "retro_set_video_refresh",
		"retro_set_audio_sample", "retro_set_audio_sample_batch",
		"retro_set_input_poll", "retro_set_input_state",
		"retro_set_controller_port_device", "retro_reset", "retro_run",
		"retro_serialize_size", "retro_serialize", "retro_unserialize",
		"retro_cheat_reset", "retro_cheat_set",
		"retro_load_game", "retro_load_game_special", "retro_unload_game",
		"retro_get_region", "retro_get_memory_data", "retro_get_memory_size",
	}
	if len(requiredSymbols) != len(want) {
		t.Fatalf("requiredSymbols has %d entries, want %d", len(requiredSymbols), len(want))
	}
	for i, name := range want {
		if requiredSymbols[i] != name {
			t.Errorf("requiredSymbols[%d] = %q, want %q", i, requiredSymbols[i], name)
		}
	}
}

func TestErrSymbolMissing_WrapsCauseAndName(t *testing.T) {
	cause := errors.New("undefined symbol")
	err := &ErrSymbolMissing{Symbol: "retro_init", Cause: cause}

	if !strings.Contains(err.Error(), "retro_init") {
		t.Errorf("Error() = %q, want it to mention the missing symbol", err.Error())
	}
	if !strings.Contains(err.Error(), "undefined symbol") {
		t.Errorf("Error() = %q, want it to mention the platform cause", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should unwrap to the platform cause")
	}
}

func TestOpen_MissingLibraryFails(t *testing.T) {
	if _, err := Open("/nonexistent/path/to/core.so"); err == nil {
		t.Fatal("expected Open to fail for a nonexistent library path")
	}
}
