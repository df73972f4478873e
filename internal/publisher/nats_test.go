package publisher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectToken(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "L1", "L1"},
		{"spaces", "line one", "line_one"},
		{"dots", "a.b.c", "a_b_c"},
		{"wildcards", "a*b>c", "a_b_c"},
		{"slashes", "a/b", "a_b"},
		{"trimmed", "  L1  ", "L1"},
		{"empty", "", "_"},
		{"whitespace only", "   ", "_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, subjectToken(tt.input))
		})
	}
}

func TestPublishPositionSubjectShape(t *testing.T) {
	// The subject layout is part of the consumer contract.
	assert.Equal(t, "fleet.position", SubjectPrefix)
	assert.Equal(t, "fleet.position.L_1.s1",
		SubjectPrefix+"."+subjectToken("L 1")+"."+subjectToken("s1"))
}
