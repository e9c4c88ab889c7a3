package tenant

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-portal/core"
)

var (
	subdomainTag   = "subdomain"
	subdomainText  = "{0} must be a single lowercase DNS label that is not reserved"
	subdomainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
)

// InitValidators registers tenant validators & translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(subdomainTag, subdomainValidation)
	core.RegisterCustomTranslation(validate, translator, subdomainTag, subdomainText)
}

// subdomainValidation only allows one lowercase DNS label, excluding reserved ones.
func subdomainValidation(fl validator.FieldLevel) bool {
	sub := fl.Field().String()
	return subdomainRegex.MatchString(sub) && !reservedLabels[sub] && sub != localhost
}
