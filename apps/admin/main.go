package main

import (
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/tenant"
)

func main() {
	conf := core.NewConfig()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	tenant.InitValidators(validate, translator)

	cli := &commandLine{
		conf:       conf,
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
	}
	err := cli.run(os.Args[1:])
	cli.close()
	if err != nil {
		os.Exit(1)
	}
}
