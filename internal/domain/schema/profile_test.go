package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Run("every listed profile resolves", func(t *testing.T) {
		for _, id := range All() {
			p, err := Get(id)
			require.NoError(t, err)
			assert.Equal(t, id, p.ID)
			assert.NotEmpty(t, p.Fields)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := Get("payroll")
		assert.Error(t, err)
	})
}

func TestProfileConsistency(t *testing.T) {
	for _, id := range All() {
		p, err := Get(id)
		require.NoError(t, err)

		t.Run(string(id), func(t *testing.T) {
			seen := make(map[string]bool)
			for _, f := range p.Fields {
				assert.False(t, seen[f], "duplicate field %s", f)
				seen[f] = true
			}
			for _, f := range p.Required {
				assert.True(t, p.HasField(f), "required field %s not in field set", f)
			}
			for f := range p.TypeHints {
				assert.True(t, p.HasField(f), "hinted field %s not in field set", f)
			}
			for f := range p.Template {
				assert.True(t, p.HasField(f), "template field %s not in field set", f)
			}
		})
	}
}

func TestHasField(t *testing.T) {
	p, err := Get(ProfileStudent)
	require.NoError(t, err)
	assert.True(t, p.HasField("school_student_id"))
	assert.False(t, p.HasField("salary"))
}
