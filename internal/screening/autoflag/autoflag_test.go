package autoflag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"watchgate/internal/domain"
	id "watchgate/pkg/domain"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name    string
		topics  []string
		reasons []string
	}{
		{"sanctioned entity", []string{"sanction"}, []string{ReasonSanctioned}},
		{"politically exposed person", []string{"pep"}, []string{ReasonPEP}},
		{"both topics yield both reasons", []string{"sanction", "pep"}, []string{ReasonSanctioned, ReasonPEP}},
		{"unrelated topics do not flag", []string{"corp.public"}, nil},
		{"no topics do not flag", nil, nil},
		{"pep sub-topics do not match exactly", []string{"role.pep"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity := domain.EntityRecord{ID: id.EntityID("Q1"), Topics: tt.topics}
			assert.Equal(t, tt.reasons, Reasons(rules, entity))
		})
	}
}

func TestCustomRules(t *testing.T) {
	highScore := Rule{
		Reason: "High relevance score",
		Match:  func(e domain.EntityRecord) bool { return e.Score >= 0.95 },
	}
	rules := append(DefaultRules(), highScore)

	entity := domain.EntityRecord{ID: id.EntityID("Q1"), Topics: []string{"sanction"}, Score: 0.99}
	assert.Equal(t, []string{ReasonSanctioned, "High relevance score"}, Reasons(rules, entity))
}
