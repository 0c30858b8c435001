package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/Garsondee/Twin-Sight/internal/game"
)

type runStats struct {
	runIndex int
	seed     int64

	firstPairedFrame     int
	firstDisconnectFrame int
	firstReassignFrame   int

	paired          int
	noDevice        int
	bindFailed      int
	stragglers      int
	verifyLost      int
	reenabled       int
	disconnects     int
	connects        int
	warnings        int
	enabledListener int

	finalStatus string
	distance    [2]float64
	byKey       map[string]int
}

func main() {
	var runs int
	var frames int
	var seedBase int64
	var orientation string
	var unplugAt int
	var replugAt int

	flag.IntVar(&runs, "runs", 3, "number of headless coop runs")
	flag.IntVar(&frames, "frames", 1800, "frames per run (60 per second)")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.StringVar(&orientation, "orientation", "vertical", "split orientation: vertical or horizontal")
	flag.IntVar(&unplugAt, "unplug-at", 600, "frame at which pad 2 is unplugged (0 = never)")
	flag.IntVar(&replugAt, "replug-at", 900, "frame at which a new pad is plugged in (0 = never)")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if frames <= 0 {
		fmt.Println("error: -frames must be > 0")
		return
	}
	o, err := game.ParseOrientation(orientation)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("=== Headless Coop Report ===\n")
	fmt.Printf("orientation=%s runs=%d frames=%d seed_base=%d unplug_at=%d replug_at=%d\n\n",
		o, runs, frames, seedBase, unplugAt, replugAt)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)
		rs, err := runCoop(i+1, seed, frames, o, unplugAt, replugAt)
		if err != nil {
			fmt.Printf("run %d: error: %v\n", i+1, err)
			return
		}
		all = append(all, rs)
		printRun(rs)
	}
	printAggregate(all)
}

// runCoop drives both pads with seeded random stick input and optionally
// unplugs and replugs a pad mid-run.
func runCoop(runIndex int, seed int64, frames int, o game.Orientation, unplugAt, replugAt int) (runStats, error) {
	cs, err := game.NewCoopSim(
		game.WithOrientation(o),
		game.WithPlayer(game.Slot1, 18, 8, 0),
		game.WithPlayer(game.Slot2, 22, 8, 0),
		game.WithWall(14, 16, 12, 1),
	)
	if err != nil {
		return runStats{}, err
	}
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- report only

	start := [2]game.Vec3{cs.Player(game.Slot1).Position(), cs.Player(game.Slot2).Position()}
	for f := 1; f <= frames; f++ {
		if f%30 == 1 {
			for i := 0; i < 2; i++ {
				if p := cs.Pad(i); p != nil {
					p.SetStick(game.StickLeft, randomStick(rng))
					p.SetStick(game.StickRight, randomStick(rng).Scale(0.5))
				}
			}
		}
		if f == unplugAt {
			cs.Unplug(1)
		}
		if f == replugAt {
			cs.Plug("Replacement Pad")
		}
		cs.Step()
	}

	rs := collectStats(cs.Log.Entries())
	rs.runIndex = runIndex
	rs.seed = seed
	rs.finalStatus = cs.Ctx.Registry.StatusInfo()
	rs.enabledListener = len(cs.Scene.EnabledListeners())
	for i, slot := range game.Slots {
		rs.distance[i] = cs.Player(slot).Position().Dist(start[i])
	}
	return rs, nil
}

func randomStick(rng *rand.Rand) game.Vec2 {
	a := rng.Float64() * 2 * math.Pi
	m := rng.Float64()
	return game.Vec2{X: math.Cos(a) * m, Y: math.Sin(a) * m}
}

func collectStats(entries []game.Diagnostic) runStats {
	rs := runStats{
		firstPairedFrame:     -1,
		firstDisconnectFrame: -1,
		firstReassignFrame:   -1,
		byKey:                map[string]int{},
	}
	for _, e := range entries {
		rs.byKey[e.Category+"/"+e.Key]++
		if e.Severity == game.SeverityWarn {
			rs.warnings++
		}
		switch e.Category + "/" + e.Key {
		case "pairing/paired":
			rs.paired++
			if rs.firstPairedFrame < 0 {
				rs.firstPairedFrame = e.Frame
			}
			if rs.firstDisconnectFrame >= 0 && rs.firstReassignFrame < 0 {
				rs.firstReassignFrame = e.Frame
			}
		case "pairing/no_device":
			rs.noDevice++
		case "pairing/bind_failed":
			rs.bindFailed++
		case "pairing/straggler_unpaired":
			rs.stragglers++
		case "pairing/verify_lost":
			rs.verifyLost++
		case "camera/reenabled":
			rs.reenabled++
		case "device/disconnected":
			rs.disconnects++
			if rs.firstDisconnectFrame < 0 {
				rs.firstDisconnectFrame = e.Frame
			}
		case "device/connected":
			rs.connects++
		}
	}
	return rs
}

// detectIssues lists invariant violations visible in a run.
func detectIssues(rs runStats) []string {
	var issues []string
	if rs.enabledListener != 1 {
		issues = append(issues, fmt.Sprintf("enabled_listeners=%d", rs.enabledListener))
	}
	if rs.bindFailed > 0 {
		issues = append(issues, fmt.Sprintf("bind_failed=%d", rs.bindFailed))
	}
	if rs.stragglers > 0 {
		issues = append(issues, fmt.Sprintf("stragglers=%d", rs.stragglers))
	}
	if rs.disconnects > 0 && rs.connects > 0 && strings.Contains(rs.finalStatus, "Unassigned") {
		issues = append(issues, "slot_unassigned_after_replug")
	}
	return issues
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("phase_markers: first_paired=%d first_disconnect=%d first_reassign=%d\n",
		rs.firstPairedFrame, rs.firstDisconnectFrame, rs.firstReassignFrame)
	fmt.Printf("pairing_events: paired=%d no_device=%d bind_failed=%d stragglers=%d verify_lost=%d\n",
		rs.paired, rs.noDevice, rs.bindFailed, rs.stragglers, rs.verifyLost)
	fmt.Printf("device_events: connected=%d disconnected=%d  camera_reenabled=%d warnings=%d\n",
		rs.connects, rs.disconnects, rs.reenabled, rs.warnings)
	fmt.Printf("distance_walked: P1=%.1fm P2=%.1fm\n", rs.distance[0], rs.distance[1])
	fmt.Printf("final_status: %s  enabled_listeners=%d\n", rs.finalStatus, rs.enabledListener)
	if issues := detectIssues(rs); len(issues) > 0 {
		fmt.Printf("ISSUES: %s\n", strings.Join(issues, ", "))
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	fmt.Printf("=== Aggregate ===\n")
	fmt.Printf("runs=%d\n", len(all))
	totals := map[string]int{}
	issueRuns := 0
	for _, rs := range all {
		for k, v := range rs.byKey {
			totals[k] += v
		}
		if len(detectIssues(rs)) > 0 {
			issueRuns++
		}
	}
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-28s avg=%.1f\n", k, avg(totals[k], len(all)))
	}
	fmt.Printf("runs_with_issues=%d\n", issueRuns)
}

func avg(sum int, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
