package progress

import (
	"math"

	"github.com/harborworks/slipway/core/model"
)

// PercentComplete derives a unit's completion percentage from its stage
// statuses. The divisor is the fixed vocabulary length for the unit's
// category, not the number of stages currently present, so a unit with
// no timeline yet reads 0% rather than dividing by zero.
func PercentComplete(u model.Unit) int {
	total := len(model.Vocabulary(u.Category))
	if total < 1 {
		total = 1
	}
	completed := 0
	for _, st := range u.Stages {
		if st.Status == model.StageCompleted {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
