package api

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/quantasec/pqscan/internal/models"
)

var validatorsOnce sync.Once

// registerCustomValidators installs the request-binding validations the
// standard tags do not cover. Gin's binding validator is process-global, so
// registration happens once even when several servers are built in one
// process.
func registerCustomValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		_ = v.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
			return models.Severity(fl.Field().String()).Valid()
		})
	})
}
