package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type mockBlockStore struct {
	solid map[[3]int]bool
}

func newMockBlockStore() *mockBlockStore {
	return &mockBlockStore{solid: make(map[[3]int]bool)}
}

func (m *mockBlockStore) IsSolid(x, y, z int) bool {
	return m.solid[[3]int{x, y, z}]
}

func (m *mockBlockStore) setSolid(x, y, z int) {
	m.solid[[3]int{x, y, z}] = true
}

func addFloor(store *mockBlockStore, minX, maxX, minZ, maxZ, y int) {
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			store.setSolid(x, y, z)
		}
	}
}

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

func TestPhysicsTick_FreeFallOneTick(t *testing.T) {
	store := newMockBlockStore()
	state := &PhysicsState{Position: mgl64.Vec3{0, 10, 0}}

	PhysicsTick(state, InputState{}, store)

	approxEqual(t, state.Position.Y(), 10.0, 1e-9, "position.y")
	approxEqual(t, state.Velocity.Y(), -0.0784, 1e-9, "velocity.y")
	if state.OnGround {
		t.Fatalf("onGround = true, want false")
	}
}

func TestPhysicsTick_FallIsCapped(t *testing.T) {
	state := &PhysicsState{Position: mgl64.Vec3{0, 1000, 0}}
	for i := 0; i < 400; i++ {
		PhysicsTick(state, InputState{}, newMockBlockStore())
	}
	if state.Velocity.Y() < -TerminalVelocity {
		t.Fatalf("velocity.y = %.4f, below terminal %.4f", state.Velocity.Y(), -TerminalVelocity)
	}
}

func TestPhysicsTick_LandsOnFloor(t *testing.T) {
	store := newMockBlockStore()
	addFloor(store, -2, 2, -2, 2, -1)
	state := &PhysicsState{Position: mgl64.Vec3{0.5, 3, 0.5}}

	for i := 0; i < 40; i++ {
		PhysicsTick(state, InputState{}, store)
	}
	approxEqual(t, state.Position.Y(), 0.0, 1e-9, "position.y")
	if !state.OnGround {
		t.Fatalf("onGround = false, want true")
	}
}

func TestPhysicsTick_WalksAlongYaw(t *testing.T) {
	tests := []struct {
		name   string
		yaw    float32
		dx, dz float64
	}{
		{"south", 0, 0, 1},
		{"west", 90, -1, 0},
		{"east", -90, 1, 0},
		{"north", 180, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockBlockStore()
			addFloor(store, -20, 20, -20, 20, -1)
			state := &PhysicsState{Position: mgl64.Vec3{0.5, 0, 0.5}, OnGround: true}

			for i := 0; i < 20; i++ {
				PhysicsTick(state, InputState{Forward: true, Yaw: tt.yaw}, store)
			}
			moved := state.Position.Sub(mgl64.Vec3{0.5, 0, 0.5})
			if moved.Len() < 1.5 {
				t.Fatalf("moved %.3f blocks in 20 ticks, want more than 1.5", moved.Len())
			}
			dir := moved.Normalize()
			if math.Abs(dir.X()-tt.dx) > 1e-6 || math.Abs(dir.Z()-tt.dz) > 1e-6 {
				t.Fatalf("direction = %v, want (%v, 0, %v)", dir, tt.dx, tt.dz)
			}
		})
	}
}

func TestPhysicsTick_CollisionAgainstWallStopsHorizontalMovement(t *testing.T) {
	store := newMockBlockStore()
	addFloor(store, -2, 4, -2, 2, -1)
	store.setSolid(2, 0, 0)
	store.setSolid(2, 1, 0)

	state := &PhysicsState{Position: mgl64.Vec3{0.5, 0, 0.5}, OnGround: true}
	for i := 0; i < 40; i++ {
		PhysicsTick(state, InputState{Forward: true, Yaw: -90}, store)
	}

	approxEqual(t, state.Position.X(), 2-PlayerHalfWidth, 1e-9, "position.x")
	approxEqual(t, state.Position.Y(), 0.0, 1e-9, "position.y")
	if state.Velocity.X() != 0 {
		t.Fatalf("velocity.x = %v, want 0 against the wall", state.Velocity.X())
	}
}

func TestPhysicsTick_JumpReachesExpectedApex(t *testing.T) {
	store := newMockBlockStore()
	addFloor(store, -4, 4, -4, 4, -1)
	state := &PhysicsState{Position: mgl64.Vec3{0.5, 0, 0.5}, OnGround: true}

	maxY := state.Position.Y()
	for i := 0; i < 40; i++ {
		PhysicsTick(state, InputState{Jump: i == 0}, store)
		maxY = math.Max(maxY, state.Position.Y())
	}

	if maxY < 1.15 || maxY > 1.35 {
		t.Fatalf("jump apex = %.4f, want around 1.25", maxY)
	}
}

func TestPhysicsTick_CannotStepUpOneBlockWithoutJump(t *testing.T) {
	store := newMockBlockStore()
	addFloor(store, -2, 4, -2, 2, -1)
	store.setSolid(1, 0, 0)

	state := &PhysicsState{Position: mgl64.Vec3{0.5, 0, 0.5}, OnGround: true}
	for i := 0; i < 20; i++ {
		PhysicsTick(state, InputState{Forward: true, Yaw: -90}, store)
	}

	approxEqual(t, state.Position.Y(), 0.0, 1e-9, "position.y")
	if state.Position.X() > 0.7+1e-9 {
		t.Fatalf("position.x = %.6f, should be blocked by 1-block step", state.Position.X())
	}
}

func TestPhysicsTick_JumpsOntoStep(t *testing.T) {
	store := newMockBlockStore()
	addFloor(store, -2, 40, -2, 2, -1)
	addFloor(store, 1, 40, -2, 2, 0)

	state := &PhysicsState{Position: mgl64.Vec3{0.5, 0, 0.5}, OnGround: true}
	for i := 0; i < 30; i++ {
		PhysicsTick(state, InputState{Forward: true, Jump: true, Yaw: -90}, store)
	}
	if state.Position.Y() < 1-1e-9 || state.Position.X() < 1.5 {
		t.Fatalf("position = %v, want on top of the step", state.Position)
	}
}

func TestPhysicsTick_NilStateIsIgnored(t *testing.T) {
	PhysicsTick(nil, InputState{Forward: true}, newMockBlockStore())
}

func TestCollidesWithBlock(t *testing.T) {
	store := newMockBlockStore()
	store.setSolid(0, 0, 0)

	if !CollidesWithBlock(PlayerAABB(mgl64.Vec3{0.5, -1, 0.5}), store) {
		t.Fatal("box overlapping the block should collide")
	}
	if CollidesWithBlock(PlayerAABB(mgl64.Vec3{0.5, 1, 0.5}), store) {
		t.Fatal("box resting on top should not collide")
	}
	if CollidesWithBlock(PlayerAABB(mgl64.Vec3{0.5, 0, 0.5}), nil) {
		t.Fatal("nil store never collides")
	}
}

func TestPhysicsTick_SneakStopsAtEdge(t *testing.T) {
	tests := []struct {
		name      string
		sneak     bool
		wantOnTop bool
	}{
		{"sneaking holds the edge", true, true},
		{"walking falls off", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockBlockStore()
			// The floor ends at x=3.
			addFloor(store, -2, 2, -2, 2, -1)
			state := &PhysicsState{Position: mgl64.Vec3{0.5, 0, 0.5}}
			input := InputState{Forward: true, Sneak: tt.sneak, Yaw: -90}

			for i := 0; i < 100; i++ {
				PhysicsTick(state, input, store)
			}

			onTop := state.OnGround && math.Abs(state.Position.Y()) < 1e-9
			if onTop != tt.wantOnTop {
				t.Fatalf("position = %v, onGround = %v, want on top = %v", state.Position, state.OnGround, tt.wantOnTop)
			}
			if tt.sneak && state.Position.X()-PlayerHalfWidth > 3 {
				t.Fatalf("x = %.4f, want the body still overlapping the last block", state.Position.X())
			}
		})
	}
}
