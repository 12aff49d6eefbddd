package request

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type timeBody struct {
	Start string `binding:"required,hhmm"`
}

type rangeEndBody struct {
	End string `binding:"required,hhmm_end"`
}

func TestHHMMValidator(t *testing.T) {
	RegisterValidators()
	RegisterValidators()

	tests := []struct {
		in string
		ok bool
	}{
		{"15:00", true},
		{"09:30", true},
		{"23:59", true},
		{"24:00", false},
		{"9:30", false},
		{"15:60", false},
		{"ab:cd", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&timeBody{Start: tt.in})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestHHMMEndValidator(t *testing.T) {
	RegisterValidators()

	tests := []struct {
		in string
		ok bool
	}{
		{"21:00", true},
		{"24:00", true},
		{"23:59", true},
		{"24:10", false},
		{"25:00", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&rangeEndBody{End: tt.in})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
