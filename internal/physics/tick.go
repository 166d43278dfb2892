package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type PhysicsState struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	OnGround bool
}

// InputState is what the agent asks for during one tick. Yaw sets the walking
// direction.
type InputState struct {
	Forward bool
	Jump    bool
	Sneak   bool
	Sprint  bool
	Yaw     float32
}

// PhysicsTick advances state by one 50 ms game tick.
func PhysicsTick(state *PhysicsState, input InputState, blocks BlockStore) {
	if state == nil {
		return
	}

	state.OnGround = isStandingOnSolidBlock(state.Position, blocks)

	move := desiredMoveVector(input)
	friction := HorizontalDragBase
	if state.OnGround {
		friction *= DefaultGroundSlippery
	}

	accel := AirAcceleration
	if state.OnGround {
		accel = groundAcceleration(moveSpeedMultiplier(input), friction)
	}
	state.Velocity = state.Velocity.Add(move.Mul(accel))

	if state.OnGround && input.Jump {
		state.Velocity[axisY] = JumpInitialVelocity
	}

	// A sneaking body on the ground never walks off an edge.
	if state.OnGround && input.Sneak {
		state.Velocity[axisX], state.Velocity[axisZ] = clampSneakEdgeVelocity(state.Position, state.Velocity, blocks)
	}

	state.Position, state.Velocity = ResolveMovement(state.Position, state.Velocity, blocks)
	state.OnGround = isStandingOnSolidBlock(state.Position, blocks)

	state.Velocity[axisY] = math.Max((state.Velocity.Y()-GravityAcceleration)*VerticalDrag, -TerminalVelocity)
	state.Velocity[axisX] *= friction
	state.Velocity[axisZ] *= friction
	zeroResidualVelocity(&state.Velocity)
}

func desiredMoveVector(input InputState) mgl64.Vec3 {
	if !input.Forward {
		return mgl64.Vec3{}
	}
	yawRad := float64(input.Yaw) * math.Pi / 180.0
	return mgl64.Vec3{-math.Sin(yawRad), 0, math.Cos(yawRad)}
}

func moveSpeedMultiplier(input InputState) float64 {
	speed := WalkBaseSpeed
	if input.Sprint {
		speed *= SprintSpeedMultiplier
	}
	if input.Sneak {
		speed *= SneakSpeedMultiplier
	}
	return speed
}

func groundAcceleration(speed, friction float64) float64 {
	if friction < CollisionAxisTolerance {
		return speed
	}
	return speed * (GroundAccelerationFactor / (friction * friction * friction))
}

func clampSneakEdgeVelocity(pos, velocity mgl64.Vec3, blocks BlockStore) (float64, float64) {
	if blocks == nil {
		return velocity.X(), velocity.Z()
	}
	adjustAxis := func(target float64, support func(delta float64) bool) float64 {
		v := target
		for !nearlyZero(v) && !support(v) {
			if math.Abs(v) <= SneakEdgeAdjustStep {
				return 0
			}
			v -= math.Copysign(SneakEdgeAdjustStep, v)
		}
		return v
	}

	velX := adjustAxis(velocity.X(), func(delta float64) bool {
		return hasGroundSupportAt(pos.Add(mgl64.Vec3{delta, 0, 0}), blocks)
	})
	velZ := adjustAxis(velocity.Z(), func(delta float64) bool {
		return hasGroundSupportAt(pos.Add(mgl64.Vec3{velX, 0, delta}), blocks)
	})
	return velX, velZ
}

func hasGroundSupportAt(pos mgl64.Vec3, blocks BlockStore) bool {
	probe := PlayerAABB(pos).Offset(mgl64.Vec3{0, -SneakEdgeProbeDistance, 0})
	return CollidesWithBlock(probe, blocks)
}

func zeroResidualVelocity(v *mgl64.Vec3) {
	if math.Abs(v.X()) < MinimumResidualHorizontalSpeed {
		v[axisX] = 0
	}
	if math.Abs(v.Z()) < MinimumResidualHorizontalSpeed {
		v[axisZ] = 0
	}
	if math.Abs(v.Y()) < MinimumResidualVerticalSpeed {
		v[axisY] = 0
	}
}

func isStandingOnSolidBlock(pos mgl64.Vec3, blocks BlockStore) bool {
	if blocks == nil {
		return false
	}
	probe := PlayerAABB(pos).Offset(mgl64.Vec3{0, -GroundProbeDistance, 0})
	return CollidesWithBlock(probe, blocks)
}
