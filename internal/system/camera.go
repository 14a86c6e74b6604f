package system

import (
	"time"

	coresys "github.com/l1jgo/petd/internal/core/system"
	"github.com/l1jgo/petd/internal/pet"
)

// CameraSystem keeps pet and chase cameras on their targets. Phase 3 (Camera).
type CameraSystem struct {
	pets *pet.Manager
}

func NewCameraSystem(pets *pet.Manager) *CameraSystem {
	return &CameraSystem{pets: pets}
}

func (s *CameraSystem) Phase() coresys.Phase { return coresys.PhaseCamera }

func (s *CameraSystem) Update(_ time.Duration) {
	s.pets.UpdateCameras()
}
