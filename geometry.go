package main

// Field layout in world units. The playfield is the inner rectangle; goals cut
// into the left and right walls and extend GoalDepth outward.
const (
	FieldWidth  = 960.0
	FieldHeight = 640.0
	FieldMargin = 60.0

	FieldLeft   = FieldMargin
	FieldTop    = FieldMargin
	FieldRight  = FieldWidth - FieldMargin
	FieldBottom = FieldHeight - FieldMargin

	FieldCenterX = (FieldLeft + FieldRight) / 2
	FieldCenterY = (FieldTop + FieldBottom) / 2

	GoalHeight = 160.0
	GoalDepth  = 34.0
	GoalTop    = FieldCenterY - GoalHeight/2
	GoalBottom = FieldCenterY + GoalHeight/2

	PostRadius = 5.0

	// StartInset is the distance of player start positions from the field corners.
	StartInset = 60.0
)

// Post is a fixed goal post with effectively infinite mass.
type Post struct {
	X, Y, R float64
}

// GoalPosts are the four corners of the two goal mouths.
var GoalPosts = [4]Post{
	{X: FieldLeft, Y: GoalTop, R: PostRadius},
	{X: FieldLeft, Y: GoalBottom, R: PostRadius},
	{X: FieldRight, Y: GoalTop, R: PostRadius},
	{X: FieldRight, Y: GoalBottom, R: PostRadius},
}

// InGoalBand reports whether y lies within the goal mouth, edges included.
func InGoalBand(y float64) bool {
	return y >= GoalTop && y <= GoalBottom
}

// ScoringTeam returns the team credited when the ball center sits at (x, y).
// The ball must be strictly beyond a goal wall and strictly inside the mouth.
// Team 1 scores in the left goal, team 0 in the right.
func ScoringTeam(x, y float64) (Team, bool) {
	if y <= GoalTop || y >= GoalBottom {
		return 0, false
	}
	switch {
	case x < FieldLeft:
		return Team1, true
	case x > FieldRight:
		return Team0, true
	}
	return 0, false
}

// NearGoalMouth reports whether x is within margin of either goal line on the field side.
func NearGoalMouth(x, margin float64) bool {
	return x < FieldLeft+margin || x > FieldRight-margin
}

// StartPosition returns the kickoff position for a seat.
func StartPosition(seat int) (float64, float64) {
	x := FieldLeft + StartInset
	if TeamOf(seat) == Team1 {
		x = FieldRight - StartInset
	}
	y := FieldTop + StartInset
	if seat%2 == 1 {
		y = FieldBottom - StartInset
	}
	return x, y
}
