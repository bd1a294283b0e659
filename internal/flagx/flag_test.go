package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate flag and value",
			args:    []string{"-a", "localhost:8080", "-x", "nope"},
			allowed: []string{"-a"},
			want:    []string{"-a", "localhost:8080"},
		},
		{
			name:    "combined with equals",
			args:    []string{"--config=conf.json", "-a=addr"},
			allowed: []string{"--config"},
			want:    []string{"--config=conf.json"},
		},
		{
			name:    "flag without value followed by another flag",
			args:    []string{"-v", "-a", "addr"},
			allowed: []string{"-v", "-a"},
			want:    []string{"-v", "-a", "addr"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "addr"},
			allowed: []string{},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}
