package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/puppyjudge/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		user        float64
		partner     float64
		wantUser    float64
		wantPartner float64
		wantFixes   int
	}{
		{name: "already valid", user: 60, partner: 40, wantUser: 60, wantPartner: 40},
		{name: "rescaled", user: 30, partner: 30, wantUser: 50, wantPartner: 50, wantFixes: 1},
		{name: "both zero", user: 0, partner: 0, wantUser: 50, wantPartner: 50, wantFixes: 1},
		{name: "clamped", user: 150, partner: -10, wantUser: 100, wantPartner: 0, wantFixes: 1},
		{name: "clamped and rescaled", user: 120, partner: 20, wantUser: 83, wantPartner: 17, wantFixes: 2},
		{name: "fractions", user: 0.8, partner: 0.2, wantUser: 80, wantPartner: 20, wantFixes: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &model.VerdictData{
				UserPercentage:    tt.user,
				PartnerPercentage: tt.partner,
				AnalysisPoints:    []string{"a", "b", "c"},
			}
			fixes := Normalize(v, model.PersonaCute, model.CourtInitial)
			assert.Equal(t, tt.wantUser, v.UserPercentage)
			assert.Equal(t, tt.wantPartner, v.PartnerPercentage)
			assert.Equal(t, 100.0, v.PercentageSum())
			assert.Len(t, fixes, tt.wantFixes)
		})
	}
}

func TestNormalize_TrimsAnalysisPoints(t *testing.T) {
	v := &model.VerdictData{UserPercentage: 50, PartnerPercentage: 50, AnalysisPoints: []string{"a", "b", "c", "d"}}
	fixes := Normalize(v, model.PersonaCute, model.CourtHigh)
	assert.Equal(t, []string{"a", "b", "c"}, v.AnalysisPoints)
	assert.Len(t, fixes, 1)
	assert.Equal(t, "analysisPoints", fixes[0].Field)
}

func TestNormalize_ShortAdviceRule(t *testing.T) {
	for _, level := range []model.CourtLevel{model.CourtInitial, model.CourtIntermediate} {
		v := &model.VerdictData{UserPercentage: 90, PartnerPercentage: 10, ShortAdvice: "道歉", AnalysisPoints: []string{"a", "b", "c"}}
		Normalize(v, model.PersonaToxic, level)
		assert.Empty(t, v.ShortAdvice, level)
	}

	v := &model.VerdictData{UserPercentage: 90, PartnerPercentage: 10, ShortAdvice: "道歉", AnalysisPoints: []string{"a", "b", "c"}}
	assert.Empty(t, Normalize(v, model.PersonaToxic, model.CourtHigh))
	assert.Equal(t, "道歉", v.ShortAdvice)
}
