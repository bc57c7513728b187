package tui

import (
	"context"
	"errors"
	"testing"
)

type stubChecker struct {
	latest string
	newer  bool
	err    error
	calls  int
}

func (s *stubChecker) Check(context.Context, string) (string, bool, error) {
	s.calls++
	return s.latest, s.newer, s.err
}

func TestCheckVersionSkipsDevBuilds(t *testing.T) {
	vc := &stubChecker{latest: "v9.9.9", newer: true}
	for _, v := range []string{"", "dev"} {
		if cmd := checkVersion(vc, v); cmd != nil {
			t.Errorf("checkVersion(%q) should be nil", v)
		}
	}
	if cmd := checkVersion(nil, "1.0.0"); cmd != nil {
		t.Error("checkVersion with nil checker should be nil")
	}
}

func TestCheckVersionReportsUpdate(t *testing.T) {
	vc := &stubChecker{latest: "v1.2.0", newer: true}
	msg := checkVersion(vc, "1.1.0")().(versionCheckMsg)
	if !msg.hasUpdate || msg.latestVersion != "v1.2.0" {
		t.Errorf("got %+v, want update to v1.2.0", msg)
	}
}

func TestCheckVersionErrorIsSilent(t *testing.T) {
	vc := &stubChecker{err: errors.New("rate limited")}
	msg := checkVersion(vc, "1.1.0")().(versionCheckMsg)
	if msg.hasUpdate {
		t.Errorf("error must not report an update: %+v", msg)
	}
	if vc.calls != 1 {
		t.Errorf("calls = %d, want 1", vc.calls)
	}
}
