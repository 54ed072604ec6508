package api

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/kitchen-assistant/backend/internal/types"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags used by the request
// types. It is safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		err = v.RegisterValidation("diet", validateDiet)
	})
	return err
}

func validateDiet(fl validator.FieldLevel) bool {
	_, err := types.ParseDiet(fl.Field().String())
	return err == nil
}

// respondBindError writes the 400 response for a request that failed to bind
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "diet" || (fe.Field() == "Diet" && fe.Tag() == "required") {
				respondInvalidDiet(c, fmt.Sprint(fe.Value()))
				return
			}
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func respondInvalidDiet(c *gin.Context, label string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":       types.InvalidDietMessage(label),
		"valid_diets": types.ValidDietNames(),
	})
}
