package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Mode", KeyMode, "hot_reload", Mode("hot_reload")},
		{"Stage", KeyStage, "library", Stage("library")},
		{"Path", KeyPath, "bin/game.dll", Path("bin/game.dll")},
		{"File", KeyFile, "game_3.pdb", File("game_3.pdb")},
		{"Package", KeyPackage, "./src/game", Package("./src/game")},
		{"Process", KeyProcess, "game_hot_reload.exe", Process("game_hot_reload.exe")},
		{"Revision", KeyRevision, "abc1234", Revision("abc1234")},
		{"Outcome", KeyOutcome, "success", Outcome("success")},
		{"Name", KeyName, "n", Name("n")},
		{"URL", KeyURL, "nats://localhost:4222", URL("nats://localhost:4222")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := Counter(6); a.Key != KeyCounter || a.Value.Int64() != 6 {
		t.Fatalf("unexpected counter attr %v", a)
	}
	if a := ExitCode(1); a.Key != KeyExitCode || a.Value.Int64() != 1 {
		t.Fatalf("unexpected exit code attr %v", a)
	}
}

func TestErrorHelper(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("expected empty error value, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Key != KeyError || a.Value.String() != "boom" {
		t.Fatalf("unexpected error attr %v", a)
	}
}
