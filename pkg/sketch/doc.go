// Package sketch runs Lua drawing scripts against a canvas surface.
//
// A sketch is described by a Lua config file that sets canvas.config:
//
//	canvas.config = {
//	    id = "clock",
//	    width = 200,
//	    height = 200,
//	    script = "clock.lua",
//	    output = "clock.png",
//	    fps = 30,
//	}
//
// The script draws through the canvas module. It may draw at top level,
// define setup(ctx) to run once after loading, and define draw(ctx, frame)
// to redraw every frame:
//
//	function draw(ctx, frame)
//	    ctx:set_fill_style("#336699")
//	    ctx:fill_rect(10, 10, 50 + frame % 100, 50)
//	end
//
// The globals surface and ctx hold the sketch's surface and its 2D
// context.
//
// # Basic Usage
//
//	s, err := sketch.New("sketch.lua", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	if err := s.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// # Lifecycle
//
// [Sketch.Start] and [Sketch.Run] draw a first frame and write the output.
// With preview enabled a window shows the surface and draw is called at
// the configured fps. With watch enabled the config and script files are
// reloaded when they change. [Sketch.Restart] reloads on demand.
//
// # Errors
//
// Errors are [SketchError] values tagged with an [ErrorCategory]; use
// [CategoryOf] to classify them.
package sketch
