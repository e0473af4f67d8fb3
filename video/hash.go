package video

import (
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
)

// FramePerceptualHash calculates the perceptual hash of a decoded frame and
// returns it in goimagehash's string form ("p:<hex>")
func FramePerceptualHash(frame image.Image) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("no frame to hash")
	}

	hash, err := goimagehash.PerceptionHash(frame)
	if err != nil {
		return "", fmt.Errorf("failed to calculate perceptual hash: %w", err)
	}

	return hash.ToString(), nil
}

// PerceptualDistance returns the Hamming distance between two hashes produced
// by FramePerceptualHash
func PerceptualDistance(a, b string) (int, error) {
	ha, err := goimagehash.ImageHashFromString(a)
	if err != nil {
		return 0, fmt.Errorf("invalid perceptual hash %q: %w", a, err)
	}
	hb, err := goimagehash.ImageHashFromString(b)
	if err != nil {
		return 0, fmt.Errorf("invalid perceptual hash %q: %w", b, err)
	}

	return ha.Distance(hb)
}
