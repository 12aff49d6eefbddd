package request

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/club-planner/internal/slot"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding rules to gin's validator:
//
//	hhmm: a strict "HH:MM" time of day.
//	hhmm_end: hhmm that also accepts "24:00".
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("hhmm", validateHHMM)
			_ = v.RegisterValidation("hhmm_end", validateHHMMEnd)
		}
	})
}

func validateHHMM(fl validator.FieldLevel) bool {
	_, err := slot.ParseTimeOfDay(fl.Field().String())
	return err == nil
}

func validateHHMMEnd(fl validator.FieldLevel) bool {
	_, err := slot.ParseEndTime(fl.Field().String())
	return err == nil
}
