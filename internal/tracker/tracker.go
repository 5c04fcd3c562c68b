// Package tracker defines the contract every tracking strategy fulfils.
// Concrete strategies live in subpackages and are selected by the registry.
package tracker

import (
	"image"

	"trackd/pkg/types"
)

// DefaultFrameRate is used when a caller does not supply a frame rate.
const DefaultFrameRate = 30

// Strategy is a multi-object tracker. Update must be called in frame order;
// implementations are not safe for concurrent use.
type Strategy interface {
	// Update consumes one frame and returns the active tracks in tracker
	// order. Each track's DetIndex refers into dets.
	Update(dets []types.Detection, img image.Image) ([]types.Track, error)
	// Reset discards all tracks and identities.
	Reset()
}
