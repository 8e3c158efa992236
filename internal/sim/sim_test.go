package sim

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

type countAction struct {
	n   *int
	err error
}

func (c countAction) Execute() error {
	*c.n++
	return c.err
}

func TestValue_String(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Text("hello"), "hello"},
		{Number(1.5), "1.5"},
		{Bool(true), "true"},
		{Position(orb.Point{12.3, 45.6}), "(12.3, 45.6)"},
		{Sequence(Text("1.0"), Number(2)), "[1.0, 2]"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("%s: expected %q, got %q", c.v.Kind(), c.want, got)
		}
	}
}

func TestValue_Truthy(t *testing.T) {
	if !Bool(true).Truthy() || Bool(false).Truthy() {
		t.Fatal("bool truthiness wrong")
	}
	if !Number(2).Truthy() || Number(0).Truthy() {
		t.Fatal("number truthiness wrong")
	}
	if !Text("true").Truthy() || Text("nope").Truthy() {
		t.Fatal("text truthiness wrong")
	}
}

func TestNode_Molecules(t *testing.T) {
	n := NewNode("t0")
	if n.Contains(MoleculeWanted) {
		t.Fatal("fresh node should carry nothing")
	}
	n.SetConcentration(MoleculeWanted, Bool(true))
	if v, ok := n.Concentration(MoleculeWanted); !ok || !v.Truthy() {
		t.Fatal("expected wanted=true")
	}
	n.RemoveConcentration(MoleculeWanted)
	if n.Contains(MoleculeWanted) {
		t.Fatal("expected wanted removed")
	}
}

func TestContinuous2D_MoveAndTrack(t *testing.T) {
	env := NewContinuous2D()
	cam := NewNode("cam0")
	cam.SetConcentration(MoleculeVision, Visible(nil))
	obj := NewNode("t0")
	if err := env.AddNode(cam, orb.Point{0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := env.AddNode(obj, orb.Point{10, 0}); err != nil {
		t.Fatal(err)
	}
	if err := env.AddNode(obj, orb.Point{1, 1}); err == nil {
		t.Fatal("expected duplicate add to fail")
	}

	env.MoveNode(cam, orb.Point{3, 4})
	env.MoveNodeToPosition(obj, orb.Point{10, 2})

	if p := env.Position(cam); p != (orb.Point{3, 4}) {
		t.Fatalf("expected cam at (3,4), got %v", p)
	}
	if d := env.CameraMovementsSinceLastQuery(); math.Abs(d-5) > 1e-9 {
		t.Fatalf("expected camera distance 5, got %v", d)
	}
	if d := env.CameraMovementsSinceLastQuery(); d != 0 {
		t.Fatalf("query should reset the counter, got %v", d)
	}
	if d := env.ObjectMovementsSinceLastQuery(); math.Abs(d-2) > 1e-9 {
		t.Fatalf("expected object distance 2, got %v", d)
	}
}

func TestContinuous2D_Heading(t *testing.T) {
	env := NewContinuous2D()
	n := NewNode("n")
	_ = env.AddNode(n, orb.Point{})
	if h := env.Heading(n); h != (orb.Point{1, 0}) {
		t.Fatalf("default heading should face +x, got %v", h)
	}
	env.SetHeading(n, orb.Point{0, 5})
	if h := env.Heading(n); math.Abs(h[1]-1) > 1e-12 {
		t.Fatalf("expected normalised heading, got %v", h)
	}
	env.SetHeading(n, orb.Point{})
	if h := env.Heading(n); math.Abs(h[1]-1) > 1e-12 {
		t.Fatal("zero heading should be ignored")
	}
}

func TestMetric_TowardClamps(t *testing.T) {
	p := Planar{}.Toward(orb.Point{0, 0}, orb.Point{10, 0}, 25)
	if p != (orb.Point{10, 0}) {
		t.Fatalf("expected clamp to target, got %v", p)
	}
	g := Geodesic{}
	from := orb.Point{12.0, 44.0}
	to := orb.Point{12.01, 44.0}
	total := g.Distance(from, to)
	mid := g.Toward(from, to, total/2)
	if d := g.Distance(from, mid); math.Abs(d-total/2) > 0.5 {
		t.Fatalf("expected to travel %.2fm, travelled %.2fm", total/2, d)
	}
}

func TestEngine_OrdersByRate(t *testing.T) {
	env := NewContinuous2D()
	fast, slow := NewNode("fast"), NewNode("slow")
	var nf, ns int
	NewReaction(fast, 4).AddAction(countAction{n: &nf})
	NewReaction(slow, 1).AddAction(countAction{n: &ns})
	e := NewEngine(env, nil)
	if err := e.ScheduleNode(fast); err != nil {
		t.Fatal(err)
	}
	if err := e.ScheduleNode(slow); err != nil {
		t.Fatal(err)
	}
	e.RunUntil(2)
	if nf != 8 || ns != 2 {
		t.Fatalf("expected fast=8 slow=2 by t=2, got fast=%d slow=%d", nf, ns)
	}
}

func TestEngine_ErrorsDoNotStopOtherReactions(t *testing.T) {
	env := NewContinuous2D()
	bad, good := NewNode("bad"), NewNode("good")
	var nb, ng int
	NewReaction(bad, 1).AddAction(countAction{n: &nb, err: errors.New("boom")})
	NewReaction(good, 1).AddAction(countAction{n: &ng})
	e := NewEngine(env, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	_ = e.ScheduleNode(bad)
	_ = e.ScheduleNode(good)
	e.RunSteps(6)
	if nb != 3 || ng != 3 {
		t.Fatalf("expected both reactions to keep firing, got bad=%d good=%d", nb, ng)
	}
	if e.Log.CountCategory("action", "error") != 3 {
		t.Fatalf("expected 3 logged errors:\n%s", e.Log.Format())
	}
}

func TestEngine_RejectsBadRate(t *testing.T) {
	e := NewEngine(NewContinuous2D(), nil)
	if err := e.Schedule(NewReaction(NewNode("z"), 0)); err == nil {
		t.Fatal("expected zero rate to be rejected")
	}
}

func TestOnceLogger_WarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	o := NewOnceLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	for i := 0; i < 5; i++ {
		o.Warn("unsupported environment")
	}
	if n := strings.Count(buf.String(), "unsupported environment"); n != 1 {
		t.Fatalf("expected a single warning, got %d", n)
	}
	if !o.Logged() {
		t.Fatal("expected Logged to report true")
	}
}

type noteAction struct {
	log  *SimLog
	node string
}

func (a noteAction) Execute() error {
	a.log.AddVerbose(a.node, "move", "moved", "", 1)
	return nil
}

func TestSimLog_VerboseEntriesCarryEngineStep(t *testing.T) {
	e := NewEngine(NewContinuous2D(), nil)
	n := NewNode("walker")
	NewReaction(n, 2).AddAction(noteAction{log: e.Log, node: "walker"})
	_ = e.ScheduleNode(n)

	e.RunSteps(2)
	if got := e.Log.CountCategory("move", ""); got != 0 {
		t.Fatalf("quiet log should record nothing, got %d", got)
	}

	e.Log.SetVerbose(true)
	e.RunSteps(1)
	last, ok := e.Log.LastOf("move", "moved")
	if !ok {
		t.Fatal("expected a verbose move entry")
	}
	if last.Step != 3 || last.Time != 1.5 || last.Node != "walker" {
		t.Fatalf("expected entry stamped step=3 t=1.5, got %+v", last)
	}
	if !e.Log.HasEntry("move", "moved", "") {
		t.Fatal("HasEntry should find the move entry")
	}
}

func TestSimLog_NilIsQuiet(t *testing.T) {
	var sl *SimLog
	sl.AddVerbose("x", "move", "moved", "", 0)
	if sl.Verbose() {
		t.Fatal("nil log must not be verbose")
	}
}
