package turntable

// AngleSequence returns the turntable angles for one full run: 0 up to but
// not including fullRotation, stepping by increment. The default 5°/360°
// configuration yields 72 angles, 0 through 355.
// This is a pure function with no side effects.
func AngleSequence(increment, fullRotation int) []int {
	if increment <= 0 || fullRotation <= 0 {
		return nil
	}

	angles := make([]int, 0, fullRotation/increment)
	for angle := 0; angle < fullRotation; angle += increment {
		angles = append(angles, angle)
	}
	return angles
}
