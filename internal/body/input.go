package body

import "github.com/Versifine/strider/internal/physics"

// InputState is the per-tick intent fed to physics. It aliases physics.InputState to
// avoid field divergence.
type InputState = physics.InputState
