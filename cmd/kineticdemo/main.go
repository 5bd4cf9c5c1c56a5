// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This is a minimum kinetic2d application showing how to load a world,
// step it and read back its bodies. For a rendered demo see the
// scenario loader's YAML format in config/worlddef.go.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gophysics/kinetic2d/config"
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/util"
	"github.com/gophysics/kinetic2d/util/logger"
	"github.com/gophysics/kinetic2d/world"
)

var log = logger.New("DEMO", logger.Default)

func main() {

	scenario := flag.String("scenario", "", "path to a YAML scenario (config.WorldDef); uses a built-in scene if omitted")
	steps := flag.Int("steps", 180, "number of steps to run before printing final body state")
	realtime := flag.Bool("realtime", false, "pace stepping to wall-clock time instead of running flat out")
	flag.Parse()

	def := config.DefaultWorldDef
	if *scenario != "" {
		loaded, err := loadScenario(*scenario)
		if err != nil {
			log.Error("failed to load scenario %s: %v", *scenario, err)
			os.Exit(1)
		}
		def = loaded
	} else {
		def.Bodies = []config.BodyDef{
			{
				Name: "floor",
				Type: "static",
				Shapes: []config.ShapeDef{
					{Type: "segment", Point1: math2d.Vec2{X: -20, Y: 0}, Point2: math2d.Vec2{X: 20, Y: 0}},
				},
			},
			{
				Name:     "ball",
				Type:     "dynamic",
				Position: math2d.Vec2{X: 0, Y: 5},
				Shapes: []config.ShapeDef{
					{Type: "circle", Radius: 0.5, Density: 1, Restitution: 0.3},
				},
			},
		}
	}

	w := world.New(def)

	ids := make([]nameHandle, 0, len(def.Bodies))
	for _, bd := range def.Bodies {
		id, err := w.CreateBody(bd)
		if err != nil {
			log.Error("failed to create body %q: %v", bd.Name, err)
			os.Exit(1)
		}
		ids = append(ids, nameHandle{name: bd.Name, handle: id})
	}

	const dt = 1.0 / 60
	var rater *util.FrameRater
	if *realtime {
		rater = util.NewFrameRater(60)
	}
	for i := 0; i < *steps; i++ {
		if rater != nil {
			rater.Start()
		}
		if err := w.Step(dt, 4); err != nil {
			log.Error("step %d failed: %v", i, err)
			os.Exit(1)
		}
		if rater != nil {
			rater.Wait()
		}
	}

	for _, nh := range ids {
		b, ok := w.GetBody(nh.handle)
		if !ok {
			continue
		}
		fmt.Printf("%-8s pos=(%.3f, %.3f) angle=%.3f\n", nh.name, b.Transform.P.X, b.Transform.P.Y, b.Transform.Q.Angle())
	}
	fmt.Print(w.DumpIslands())
}

type nameHandle struct {
	name   string
	handle idpool.Handle
}

func loadScenario(path string) (config.WorldDef, error) {

	f, err := os.Open(path)
	if err != nil {
		return config.WorldDef{}, err
	}
	defer f.Close()
	return config.LoadWorldDef(f)
}
