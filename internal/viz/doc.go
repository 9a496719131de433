// Package viz renders recorded sphere runs in the terminal.
//
// [Player] is a Bubble Tea model that draws the sphere as a Braille
// wireframe with the particle, its trail, a velocity arrow and a gravity
// arrow, next to an info panel and a height graph. [Playback] is the frame
// cursor behind it and is shared with the websocket server.
//
// # Key Bindings
//
//	Space - Play/Pause
//	←/→   - Step one frame
//	[/]   - Jump 50 frames
//	x/y   - Rotate camera
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
