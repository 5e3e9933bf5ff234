package carbon

import (
	"ecometrics/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		rate     float64
		expected models.BadgeLevel
	}{
		{0, models.BadgePlatinum},
		{5, models.BadgePlatinum},
		{10, models.BadgePlatinum},
		{10.01, models.BadgeGold},
		{15, models.BadgeGold},
		{20, models.BadgeGold},
		{30, models.BadgeSilver},
		{50, models.BadgeSilver},
		{50.01, models.BadgeBronze},
		{75, models.BadgeBronze},
		{100, models.BadgeBronze},
		{210, models.BadgeBronze},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.rate), "rate %v", tt.rate)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	prev := Classify(0)
	for rate := 0.0; rate <= 120; rate += 0.25 {
		cur := Classify(rate)
		assert.LessOrEqual(t, cur.Rank(), prev.Rank(), "badge improved at rate %v", rate)
		prev = cur
	}
}
