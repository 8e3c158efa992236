// Package config loads smart-camera scenarios from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/smartcam/internal/geom"
	"github.com/Garsondee/smartcam/internal/movement"
	"github.com/Garsondee/smartcam/internal/vision"
)

const (
	EnvContinuous = "continuous"
	EnvMap        = "map"

	RoutingStraight = "straight"
	RoutingRoads    = "roads"
)

// Scenario is a complete simulation set-up.
type Scenario struct {
	Name        string      `yaml:"name"`
	Environment Environment `yaml:"environment"`
	View        View        `yaml:"view"`
	Run         Run         `yaml:"run"`
	Cameras     []Camera    `yaml:"cameras"`
	Targets     []Target    `yaml:"targets"`
}

type Environment struct {
	Kind  string `yaml:"kind"`
	Roads string `yaml:"roads,omitempty"` // GeoJSON road network
}

// View is the viewer's initial framing. A nil Zoom takes the default.
type View struct {
	Zoom   *float64   `yaml:"zoom"`
	Center [2]float64 `yaml:"center"`
}

type Run struct {
	Until       float64 `yaml:"until"`
	SampleEvery float64 `yaml:"sample_every"`
	CoverageK   int     `yaml:"coverage_k"`
	Seed        int64   `yaml:"seed"` // drives headings left unset
}

type FOV struct {
	Angle     float64 `yaml:"angle"` // degrees
	Distance  float64 `yaml:"distance"`
	BlindSpot float64 `yaml:"blind_spot"`
}

type Shape struct {
	Radius float64 `yaml:"radius"`
	Ratio  float64 `yaml:"ratio"`
}

// Camera is a node carrying a field of view. With Follow set it chases the
// node with that label. A nil Heading is drawn at random from Run.Seed.
type Camera struct {
	Label    string     `yaml:"label"`
	Position [2]float64 `yaml:"position"`
	Heading  *float64   `yaml:"heading"` // degrees
	FOV      FOV        `yaml:"fov"`
	Shape    Shape      `yaml:"shape"`
	Follow   string     `yaml:"follow,omitempty"`
	Speed    *float64   `yaml:"speed"`
	Rate     *float64   `yaml:"rate"`
	Routing  string     `yaml:"routing"`
}

// Target is a node the cameras try to cover. Goal is written verbatim into
// the node's destination molecule, so any resolvable text works; Waypoints
// make the node patrol instead.
type Target struct {
	Label     string       `yaml:"label"`
	Position  [2]float64   `yaml:"position"`
	Wanted    bool         `yaml:"wanted"`
	Goal      string       `yaml:"goal,omitempty"`
	Waypoints [][2]float64 `yaml:"waypoints,omitempty"`
	Speed     *float64     `yaml:"speed"`
	Rate      *float64     `yaml:"rate"`
	Routing   string       `yaml:"routing"`
	Shape     Shape        `yaml:"shape"`
}

// Float returns a pointer to v, for the optional numeric fields.
func Float(v float64) *float64 { return &v }

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario, applies defaults and validates it. Unknown keys
// are errors.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario YAML: %w", err)
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ApplyDefaults fills unset fields. Parse calls it before validating.
func (s *Scenario) ApplyDefaults() {
	if s.Name == "" {
		s.Name = "scenario"
	}
	if s.Environment.Kind == "" {
		s.Environment.Kind = EnvContinuous
	}
	if s.View.Zoom == nil {
		s.View.Zoom = Float(20)
	}
	if s.Run.Until == 0 {
		s.Run.Until = 60
	}
	if s.Run.SampleEvery == 0 {
		s.Run.SampleEvery = 1
	}
	if s.Run.CoverageK == 0 {
		s.Run.CoverageK = 2
	}
	for i := range s.Cameras {
		c := &s.Cameras[i]
		if c.Label == "" {
			c.Label = fmt.Sprintf("cam-%d", i)
		}
		defaultMotion(&c.Speed, &c.Rate, &c.Routing)
		defaultShape(&c.Shape)
	}
	for i := range s.Targets {
		t := &s.Targets[i]
		if t.Label == "" {
			t.Label = fmt.Sprintf("target-%d", i)
		}
		defaultMotion(&t.Speed, &t.Rate, &t.Routing)
		defaultShape(&t.Shape)
	}
}

// defaultMotion only fills fields left out, so an explicit zero survives to
// validation.
func defaultMotion(speed, rate **float64, routing *string) {
	if *speed == nil {
		*speed = Float(movement.DefaultSpeed)
	}
	if *rate == nil {
		*rate = Float(1)
	}
	if *routing == "" {
		*routing = RoutingStraight
	}
}

func defaultShape(s *Shape) {
	if s.Radius == 0 {
		s.Radius = 0.5
	}
	if s.Ratio == 0 {
		s.Ratio = 1
	}
}

// Validate reports every static problem at once. Geometry problems wrap
// geom.ErrInvalidGeometryParameter.
func (s *Scenario) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	switch s.Environment.Kind {
	case EnvContinuous, EnvMap:
	default:
		add("environment: unknown kind %q", s.Environment.Kind)
	}
	if z := s.View.Zoom; z == nil || !(*z > 0) {
		add("view: %w: zoom must be positive, got %s", geom.ErrInvalidGeometryParameter, floatText(z))
	}
	if s.Run.Until < 0 || s.Run.SampleEvery < 0 {
		add("run: until and sample_every must not be negative")
	}
	if s.Run.CoverageK < 0 {
		add("run: coverage_k must be positive, got %d", s.Run.CoverageK)
	}

	labels := make(map[string]bool)
	checkLabel := func(label string) {
		if labels[label] {
			add("duplicate node label %q", label)
		}
		labels[label] = true
	}
	checkMotion := func(who string, speed, rate *float64, routing string) {
		if speed == nil || *speed < 0 || math.IsNaN(*speed) {
			add("%s: speed must not be negative, got %s", who, floatText(speed))
		}
		if rate == nil || !(*rate > 0) {
			add("%s: rate must be positive, got %s", who, floatText(rate))
		}
		switch routing {
		case RoutingStraight:
		case RoutingRoads:
			if s.Environment.Roads == "" {
				add("%s: roads routing needs environment.roads", who)
			}
		default:
			add("%s: unknown routing %q", who, routing)
		}
	}
	checkShape := func(who string, sh Shape) {
		if _, err := geom.EggShapedEllipse(sh.Radius, sh.Ratio); err != nil {
			add("%s: shape: %w", who, err)
		}
	}

	for _, c := range s.Cameras {
		who := "camera " + c.Label
		checkLabel(c.Label)
		if _, err := vision.NewSpecDegrees(c.FOV.Angle, c.FOV.Distance, c.FOV.BlindSpot); err != nil {
			add("%s: fov: %w", who, err)
		}
		if s.Environment.Kind == EnvMap {
			add("%s: %w", who, vision.ErrIncompatibleEnvironment)
		}
		if c.Heading != nil && (math.IsNaN(*c.Heading) || math.IsInf(*c.Heading, 0)) {
			add("%s: heading must be finite, got %g", who, *c.Heading)
		}
		checkMotion(who, c.Speed, c.Rate, c.Routing)
		checkShape(who, c.Shape)
	}
	for _, t := range s.Targets {
		who := "target " + t.Label
		checkLabel(t.Label)
		if t.Goal != "" && len(t.Waypoints) > 0 {
			add("%s: goal and waypoints are exclusive", who)
		}
		checkMotion(who, t.Speed, t.Rate, t.Routing)
		checkShape(who, t.Shape)
	}
	for _, c := range s.Cameras {
		if c.Follow == "" {
			continue
		}
		if c.Follow == c.Label || !labels[c.Follow] {
			add("camera %s: follow target %q not found", c.Label, c.Follow)
		}
	}
	return errors.Join(errs...)
}

func floatText(v *float64) string {
	if v == nil {
		return "nothing"
	}
	return fmt.Sprintf("%g", *v)
}
