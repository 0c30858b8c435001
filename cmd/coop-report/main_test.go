package main

import (
	"strings"
	"testing"

	"github.com/Garsondee/Twin-Sight/internal/game"
)

func TestCollectStats_CountsPairingAndDeviceEvents(t *testing.T) {
	entries := []game.Diagnostic{
		{Frame: 0, Category: game.CatPairing, Key: "paired", Slot: game.Slot1},
		{Frame: 0, Category: game.CatPairing, Key: "paired", Slot: game.Slot2},
		{Frame: 10, Severity: game.SeverityWarn, Category: game.CatDevice, Key: "disconnected", Slot: game.Slot2},
		{Frame: 10, Severity: game.SeverityWarn, Category: game.CatPairing, Key: "no_device", Slot: game.Slot2},
		{Frame: 20, Category: game.CatDevice, Key: "connected"},
		{Frame: 20, Category: game.CatPairing, Key: "paired", Slot: game.Slot2},
	}
	rs := collectStats(entries)
	if rs.paired != 3 {
		t.Fatalf("expected paired=3, got %d", rs.paired)
	}
	if rs.firstPairedFrame != 0 || rs.firstDisconnectFrame != 10 || rs.firstReassignFrame != 20 {
		t.Fatalf("unexpected phase markers: paired=%d disconnect=%d reassign=%d",
			rs.firstPairedFrame, rs.firstDisconnectFrame, rs.firstReassignFrame)
	}
	if rs.warnings != 2 || rs.noDevice != 1 {
		t.Fatalf("expected warnings=2 no_device=1, got %d %d", rs.warnings, rs.noDevice)
	}
}

func TestDetectIssues_FlagsMultipleListeners(t *testing.T) {
	issues := detectIssues(runStats{enabledListener: 2, finalStatus: "P1: a | P2: b"})
	if len(issues) != 1 || !strings.Contains(issues[0], "enabled_listeners=2") {
		t.Fatalf("expected listener issue, got %v", issues)
	}
}

func TestDetectIssues_CleanRun(t *testing.T) {
	issues := detectIssues(runStats{enabledListener: 1, finalStatus: "P1: a | P2: b"})
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestRunCoop_ReplugRestoresBothSlots(t *testing.T) {
	rs, err := runCoop(1, 7, 240, game.SplitVertical, 60, 120)
	if err != nil {
		t.Fatalf("runCoop: %v", err)
	}
	if rs.disconnects != 1 || rs.connects != 1 {
		t.Fatalf("expected one disconnect and one connect, got %d/%d", rs.disconnects, rs.connects)
	}
	if strings.Contains(rs.finalStatus, "Unassigned") {
		t.Fatalf("expected both slots assigned after replug, got %q", rs.finalStatus)
	}
	if issues := detectIssues(rs); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}
