package main

import "math"

// Overlaps reports whether two circles strictly interpenetrate
func Overlaps(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	radSum := r1 + r2
	return dx*dx+dy*dy < radSum*radSum
}

// Collide resolves contact between two bodies and reports whether they touched.
//
// The overlap is split in inverse proportion to mass so the pair's center of
// mass does not move. An impulse scaled by restitution is applied only while
// the bodies close along the contact normal. Coincident centers separate along +X.
func Collide(a, b *Body, restitution float64) bool {
	if !Overlaps(a.X, a.Y, a.R, b.X, b.Y, b.R) {
		return false
	}
	dx := b.X - a.X
	dy := b.Y - a.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	nx, ny := 1.0, 0.0
	if dist > 0 {
		nx, ny = dx/dist, dy/dist
	}

	overlap := a.R + b.R - dist
	invA := 1 / a.Mass
	invB := 1 / b.Mass
	inv := invA + invB
	a.X -= overlap * invA / inv * nx
	a.Y -= overlap * invA / inv * ny
	b.X += overlap * invB / inv * nx
	b.Y += overlap * invB / inv * ny

	// dvn > 0 means a is moving toward b along the normal
	dvn := (a.VX-b.VX)*nx + (a.VY-b.VY)*ny
	if dvn <= 0 {
		return true
	}
	j := (1 + restitution) * dvn / inv
	a.VX -= j * nx * invA
	a.VY -= j * ny * invA
	b.VX += j * nx * invB
	b.VY += j * ny * invB
	return true
}

// CollidePosts pushes b out of any goal post it overlaps and reflects the
// inward velocity component. It reports whether any velocity was reflected.
func CollidePosts(b *Body, restitution float64) bool {
	hit := false
	for _, post := range GoalPosts {
		dist := Distance(post.X, post.Y, b.X, b.Y)
		minD := b.R + post.R
		if dist >= minD || dist == 0 {
			continue
		}
		nx, ny := (b.X-post.X)/dist, (b.Y-post.Y)/dist
		b.X = post.X + nx*minD
		b.Y = post.Y + ny*minD
		dot := b.VX*nx + b.VY*ny
		if dot < 0 {
			b.VX -= (1 + restitution) * dot * nx
			b.VY -= (1 + restitution) * dot * ny
			hit = true
		}
	}
	return hit
}

// WallBounce keeps b inside the field. Inside the goal band the side walls
// open into the goal pocket, whose back and side walls bounce instead.
func WallBounce(b *Body, restitution float64) {
	r := b.R
	if b.Y-r < FieldTop {
		b.Y = FieldTop + r
		if b.VY < 0 {
			b.VY *= -restitution
		}
	}
	if b.Y+r > FieldBottom {
		b.Y = FieldBottom - r
		if b.VY > 0 {
			b.VY *= -restitution
		}
	}

	inGoal := InGoalBand(b.Y)

	// left wall and pocket
	if b.X-r < FieldLeft {
		if inGoal {
			if b.X-r < FieldLeft-GoalDepth {
				b.X = FieldLeft - GoalDepth + r
				if b.VX < 0 {
					b.VX *= -restitution
				}
			}
		} else {
			b.X = FieldLeft + r
			if b.VX < 0 {
				b.VX *= -restitution
			}
		}
	}
	if b.X < FieldLeft && b.X > FieldLeft-GoalDepth-r {
		bouncePocketSides(b, restitution)
	}

	// right wall and pocket
	if b.X+r > FieldRight {
		if inGoal {
			if b.X+r > FieldRight+GoalDepth {
				b.X = FieldRight + GoalDepth - r
				if b.VX > 0 {
					b.VX *= -restitution
				}
			}
		} else {
			b.X = FieldRight - r
			if b.VX > 0 {
				b.VX *= -restitution
			}
		}
	}
	if b.X > FieldRight && b.X < FieldRight+GoalDepth+r {
		bouncePocketSides(b, restitution)
	}
}

func bouncePocketSides(b *Body, restitution float64) {
	if b.Y-b.R < GoalTop {
		b.Y = GoalTop + b.R
		if b.VY < 0 {
			b.VY *= -restitution
		}
	}
	if b.Y+b.R > GoalBottom {
		b.Y = GoalBottom - b.R
		if b.VY > 0 {
			b.VY *= -restitution
		}
	}
}
