// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads declarative world and scenario descriptions from
// YAML (spec §6 "World configuration options"), the same library and
// parse-from-io.Reader shape the teacher's gui.Builder uses for panel
// layout (gui/builder.go), generalized here from GUI widgets to
// WorldDef tuning plus named body/shape templates so integration tests
// and sample scenes are data, not Go literals.
package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v2"

	"github.com/gophysics/kinetic2d/math2d"
)

// WorldDef is the YAML-loadable subset of spec §6's "World configuration
// options": the scalar tuning values and named body/shape templates. The
// host-callback options (frictionCallback, restitutionCallback,
// preSolveCallback, customFilterCallback) are not representable in YAML
// and stay Go-only: the caller builds a WorldDef with LoadWorldDef, then
// passes it alongside a world.Options value (the callback fields) to
// world.NewWithOptions. math2d.Vec2's exported X/Y fields need no yaml
// tags of their own: yaml.v2 lowercases untagged field names by
// default, which already gives the "x"/"y" keys a document would
// naturally use.
type WorldDef struct {
	Gravity math2d.Vec2 `yaml:"gravity"`

	RestitutionThreshold float64 `yaml:"restitutionThreshold"`
	HitEventThreshold    float64 `yaml:"hitEventThreshold"`

	ContactHertz        float64 `yaml:"contactHertz"`
	ContactDampingRatio float64 `yaml:"contactDampingRatio"`
	JointHertz          float64 `yaml:"jointHertz"`
	JointDampingRatio   float64 `yaml:"jointDampingRatio"`

	EnableSleep       bool `yaml:"enableSleep"`
	EnableContinuous  bool `yaml:"enableContinuous"`
	EnableSpeculative bool `yaml:"enableSpeculative"`

	MaximumLinearSpeed  float64 `yaml:"maximumLinearSpeed"`
	MaximumAngularSpeed float64 `yaml:"maximumAngularSpeed"`

	WorkerCount int `yaml:"workerCount"`

	Bodies []BodyDef `yaml:"bodies"`
}

// DefaultWorldDef matches spec §6's implied defaults (earth-like gravity,
// sleep and continuous collision both enabled, restitution only applied
// above a 1 m/s approach speed) — the same role the teacher's
// zero-value-friendly struct literals play for its own config structs.
var DefaultWorldDef = WorldDef{
	Gravity:              math2d.Vec2{X: 0, Y: -10},
	RestitutionThreshold: 1.0,
	HitEventThreshold:    1.0,
	ContactHertz:         30,
	ContactDampingRatio:  10,
	JointHertz:           60,
	JointDampingRatio:    2,
	EnableSleep:          true,
	EnableContinuous:     true,
	EnableSpeculative:    true,
	MaximumLinearSpeed:   400,
	MaximumAngularSpeed:  4 * 3.14159265358979,
	WorkerCount:          1,
}

// BodyDef is a named body template: its initial placement, motion
// properties, and the shapes attached to it (spec §3 "Body"/"Shape"
// data model, made YAML-loadable).
type BodyDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // "static", "kinematic", "dynamic"

	Position math2d.Vec2 `yaml:"position"`
	Angle    float64     `yaml:"angle"`

	LinearVelocity  math2d.Vec2 `yaml:"linearVelocity"`
	AngularVelocity float64     `yaml:"angularVelocity"`

	LinearDamping  float64 `yaml:"linearDamping"`
	AngularDamping float64 `yaml:"angularDamping"`
	GravityScale   float64 `yaml:"gravityScale"`

	IsBullet          bool `yaml:"isBullet"`
	AllowFastRotation bool `yaml:"allowFastRotation"`
	// DisableSleep opts a body out of sleeping (spec §4.11); omitted (the
	// YAML zero value, false) leaves object.NewBody's own "sleep enabled
	// by default" in place — a plain EnableSleep bool couldn't tell
	// "not specified" from "explicitly false" in a document that just
	// omits the field, which is the common case.
	DisableSleep bool `yaml:"disableSleep"`

	Shapes []ShapeDef `yaml:"shapes"`
}

// ShapeDef is a named shape template attached to a BodyDef. Exactly one
// of the geometry field groups is populated, selected by Type.
type ShapeDef struct {
	Type string `yaml:"type"` // "circle", "capsule", "polygon", "segment"

	Center   math2d.Vec2   `yaml:"center"`
	Radius   float64       `yaml:"radius"`
	Point1   math2d.Vec2   `yaml:"point1"`
	Point2   math2d.Vec2   `yaml:"point2"`
	Vertices []math2d.Vec2 `yaml:"vertices"`

	Density float64 `yaml:"density"`

	Friction          float64 `yaml:"friction"`
	Restitution       float64 `yaml:"restitution"`
	RollingResistance float64 `yaml:"rollingResistance"`
	TangentSpeed      float64 `yaml:"tangentSpeed"`

	CategoryBits uint64 `yaml:"categoryBits"`
	MaskBits     uint64 `yaml:"maskBits"`
	GroupIndex   int32  `yaml:"groupIndex"`

	EnableContactEvents bool  `yaml:"enableContactEvents"`
	EnableHitEvents     bool  `yaml:"enableHitEvents"`
	SensorIndex         int32 `yaml:"sensorIndex"`
}

// LoadWorldDef parses a YAML document into a WorldDef, starting from
// DefaultWorldDef so a document that only overrides gravity and lists
// bodies doesn't have to repeat every tuning default (the same
// "unmarshal into a populated struct" idiom gui.Builder's ParseString
// uses, there starting from a zero panelDesc since GUI panels have no
// analogous shared defaults).
func LoadWorldDef(r io.Reader) (WorldDef, error) {

	data, err := io.ReadAll(r)
	if err != nil {
		return WorldDef{}, fmt.Errorf("kinetic2d/config: reading world def: %w", err)
	}

	def := DefaultWorldDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return WorldDef{}, fmt.Errorf("kinetic2d/config: parsing world def: %w", err)
	}
	return def, nil
}
