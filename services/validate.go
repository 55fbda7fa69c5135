package services

import (
	"net/http"

	"github.com/gin-gonic/gin/binding"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/apperr"
)

// validateInput runs the binding tags of in through gin's validator, so callers
// outside a request get the same rules as ShouldBindJSON.
func validateInput(in interface{}) error {
	if err := binding.Validator.ValidateStruct(in); err != nil {
		return apperr.New(http.StatusBadRequest, apperr.CodeValidation, err)
	}
	return nil
}
