package types

import (
	"errors"
	"fmt"
)

var ErrEvidenceShape = errors.New("evidence does not match category requirements")

// Check compares evidence counts against the shape.
func (s EvidenceShape) Check(images, videos, coordinates int) error {
	switch {
	case images < s.MinImages:
		return fmt.Errorf("%w: need at least %d image(s), got %d", ErrEvidenceShape, s.MinImages, images)
	case videos < s.MinVideos:
		return fmt.Errorf("%w: need at least %d video(s), got %d", ErrEvidenceShape, s.MinVideos, videos)
	case s.MaxVideos > 0 && videos > s.MaxVideos:
		return fmt.Errorf("%w: at most %d video(s) allowed, got %d", ErrEvidenceShape, s.MaxVideos, videos)
	case coordinates < s.MinCoordinates:
		return fmt.Errorf("%w: need at least %d GPS point(s), got %d", ErrEvidenceShape, s.MinCoordinates, coordinates)
	}
	return nil
}
