package academic

// letterScale is ordered from the highest threshold down.
var letterScale = []struct {
	min    float64
	letter string
}{
	{85, "A"},
	{80, "A-"},
	{75, "B+"},
	{70, "B"},
	{65, "B-"},
	{60, "C+"},
	{55, "C"},
	{40, "D"},
}

// LetterFor maps a 0-100 score onto the letter scale.
func LetterFor(score float64) string {
	for _, step := range letterScale {
		if score >= step.min {
			return step.letter
		}
	}
	return "E"
}
