package verdict

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/prompt"
)

// Correction describes one change made by Normalize
type Correction struct {
	Field  string
	Detail string
}

func (c Correction) String() string {
	return c.Field + ": " + c.Detail
}

// Normalize enforces the verdict contract locally: percentages in [0,100]
// summing to 100, at most three analysis points, and short advice blanked
// where the persona and level forbid it. It returns what it changed.
func Normalize(v *model.VerdictData, persona model.JudgePersona, level model.CourtLevel) []Correction {
	var fixes []Correction

	user, partner := clampPercent(v.UserPercentage), clampPercent(v.PartnerPercentage)
	if user != v.UserPercentage || partner != v.PartnerPercentage {
		fixes = append(fixes, Correction{
			Field:  "percentages",
			Detail: fmt.Sprintf("clamped %.4g/%.4g to %.4g/%.4g", v.UserPercentage, v.PartnerPercentage, user, partner),
		})
	}
	if sum := user + partner; sum != 100 {
		origUser, origPartner := user, partner
		if sum == 0 {
			user, partner = 50, 50
		} else {
			user = math.Round(user / sum * 100)
			partner = 100 - user
		}
		fixes = append(fixes, Correction{
			Field:  "percentages",
			Detail: fmt.Sprintf("rescaled %.4g/%.4g to %.4g/%.4g", origUser, origPartner, user, partner),
		})
	}
	v.UserPercentage, v.PartnerPercentage = user, partner

	if n := len(v.AnalysisPoints); n > model.AnalysisPointCount {
		v.AnalysisPoints = v.AnalysisPoints[:model.AnalysisPointCount]
		fixes = append(fixes, Correction{
			Field:  "analysisPoints",
			Detail: fmt.Sprintf("trimmed %d points to %d", n, model.AnalysisPointCount),
		})
	}

	if !prompt.ShortAdviceRequired(persona, level) && strings.TrimSpace(v.ShortAdvice) != "" {
		v.ShortAdvice = ""
		fixes = append(fixes, Correction{
			Field:  "shortAdvice",
			Detail: fmt.Sprintf("blanked for %s at %s", persona, level),
		})
	}

	return fixes
}

func clampPercent(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
