// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("market", validateMarket)
		_ = v.RegisterValidation("asset_type", validateAssetType)
	}
}

func validateMarket(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "india", "europe":
		return true
	}
	return false
}

func validateAssetType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "stock", "bank_account", "mutual_fund", "fixed_deposit", "insurance", "commodity":
		return true
	}
	return false
}
