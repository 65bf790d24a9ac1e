// Package geometry maps between timeline seconds and screen pixels.
//
// A Mapper holds the only presentation state the engine cares about: the
// zoom factor (clamped to configured bounds) and the snap grid. Changing
// zoom never touches clip data; snapping is applied by the timeline when it
// turns a raw pointer-derived time into a committed position.
//
//	pixelsPerSecond = zoom * baseScale
//	TimeToPixel(t)  = t * pixelsPerSecond
//	PixelToTime(x)  = x / pixelsPerSecond
//	Snap(t, grid)   = round(t / grid) * grid
package geometry
