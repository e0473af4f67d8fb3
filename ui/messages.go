package ui

import "image"

// FrameMsg carries the next decoded frame to the player
type FrameMsg struct {
	Frame image.Image
}
