package body

import (
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/strider/internal/physics"
)

const (
	standingEyeHeight = 1.62
	sneakingEyeHeight = 1.32
)

// Snapshot is a consistent copy of the body's state.
type Snapshot struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	OnGround bool
	Yaw      float32
	Pitch    float32
	Sneaking bool
}

// Body is a simulated agent: it keeps a view direction that the orientation controller
// writes, collects walking intents between ticks, and moves through the block world
// with game physics. All methods are safe for concurrent use.
type Body struct {
	mu       sync.Mutex
	physics  physics.PhysicsState
	blocks   physics.BlockStore
	yaw      float32
	pitch    float32
	sneaking bool
	sprint   bool
	pending  InputState
}

func New(initial mgl64.Vec3, blocks physics.BlockStore) *Body {
	return &Body{
		physics: physics.PhysicsState{Position: initial},
		blocks:  blocks,
	}
}

// Tick applies the intents collected since the last tick and advances physics by one
// game tick. Intents are cleared afterwards.
func (b *Body) Tick() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	input := b.pending
	input.Sneak = b.sneaking
	input.Sprint = b.sprint
	input.Yaw = b.yaw
	input = normalizeMovementInput(input)

	physics.PhysicsTick(&b.physics, input, b.blocks)
	b.pending = InputState{}
}

func (b *Body) Position() mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.physics.Position
}

func (b *Body) EyePosition() mgl64.Vec3 {
	s := b.Snapshot()
	eye := standingEyeHeight
	if s.Sneaking {
		eye = sneakingEyeHeight
	}
	return s.Position.Add(mgl64.Vec3{0, eye, 0})
}

func (b *Body) Rotation() (float32, float32) {
	if b == nil {
		return 0, 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.yaw, b.pitch
}

func (b *Body) SetRotation(yaw, pitch float32) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.yaw, b.pitch = yaw, pitch
	b.mu.Unlock()
}

func (b *Body) PressForward() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.pending.Forward = true
	b.mu.Unlock()
}

func (b *Body) PressJump() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.pending.Jump = true
	b.mu.Unlock()
}

func (b *Body) SetSneaking(on bool) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.sneaking = on
	b.mu.Unlock()
}

func (b *Body) SetSprint(on bool) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.sprint = on
	b.mu.Unlock()
}

// Teleport moves the body and stops it.
func (b *Body) Teleport(pos mgl64.Vec3) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.physics.Position = pos
	b.physics.Velocity = mgl64.Vec3{}
	b.mu.Unlock()
	slog.Info("Teleported", "x", pos.X(), "y", pos.Y(), "z", pos.Z())
}

func (b *Body) Snapshot() Snapshot {
	if b == nil {
		return Snapshot{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Position: b.physics.Position,
		Velocity: b.physics.Velocity,
		OnGround: b.physics.OnGround,
		Yaw:      b.yaw,
		Pitch:    b.pitch,
		Sneaking: b.sneaking,
	}
}

func normalizeMovementInput(input InputState) InputState {
	out := input

	// Sneaking and sprinting are mutually exclusive.
	if out.Sneak {
		out.Sprint = false
	}
	// Sprint requires forward movement intent.
	if !out.Forward {
		out.Sprint = false
	}

	return out
}
