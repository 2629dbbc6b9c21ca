package registration

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/educonnectt/web/core"
)

type (
	// Package is one purchasable class package within a curriculum.
	Package struct {
		Code        string `json:"code" validate:"required"`
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		Duration    string `json:"duration" validate:"required"`
	}

	Curriculum struct {
		Name        string    `json:"name" validate:"required"`
		Description string    `json:"description"`
		Packages    []Package `json:"packages" validate:"min=1,dive"`
		// Grades is ordered; the first entry is the default grade assigned
		// on package selection.
		Grades []string `json:"grades" validate:"min=1,dive,required"`
	}

	Catalog struct {
		Curricula []Curriculum `json:"curricula" validate:"min=1,dive"`
	}
)

// DefaultCatalog is the configured curriculum/package/grade offering.
func DefaultCatalog() Catalog {
	return Catalog{Curricula: []Curriculum{
		{
			Name:        "GES",
			Description: "Ghana Education Service Curriculum",
			Packages: []Package{
				{Code: "EC", Name: "Extra Classes", Description: "Enhance your learning after school.", Duration: "3 months"},
				{Code: "HS", Name: "Home Tuition", Description: "Private lessons at home.", Duration: "3 months"},
				{Code: "VC", Name: "Vacation Classes", Description: "Learn and have fun during vacations.", Duration: "1 months"},
				{Code: "SC", Name: "Special Classes", Description: "Tailored group special classes.", Duration: "1 months"},
				{Code: "OC", Name: "One on One Classes", Description: "Personalized learning.", Duration: "1 months"},
				{Code: "EPC", Name: "Exams Prep Classes", Description: "Get ready for exams confidently.", Duration: "3 months"},
				{Code: "WC", Name: "Weekend Classes", Description: "Learn smarter every weekend.", Duration: "3 months"},
			},
			Grades: []string{"4", "5-6", "JHS 1-3", "SHS 1-3"},
		},
		{
			Name:        "Cambridge",
			Description: "Cambridge International Curriculum",
			Packages: []Package{
				{Code: "EC", Name: "Extra Classes", Description: "Additional lessons.", Duration: "3 months"},
				{Code: "WC", Name: "Weekend Classes", Description: "Extra weekend learning.", Duration: "3 months"},
				{Code: "OC", Name: "One on One Classes", Description: "Personalized teaching.", Duration: "1 months"},
				{Code: "EPC", Name: "Exams Prep Classes", Description: "Extra help for students.", Duration: "3 months"},
				{Code: "SC", Name: "Special Classes", Description: "Special intensive classes.", Duration: "1 months"},
			},
			Grades: []string{"Stage 4-6", "Stage 7-11", "Stage 12-13"},
		},
	}}
}

// Validate rejects a malformed catalog at startup: a curriculum with no
// packages or no grades is a configuration defect, not a runtime error.
func (c Catalog) Validate() error {
	if err := core.Validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid curriculum catalog")
	}
	seen := make(map[string]bool, len(c.Curricula))
	for _, cur := range c.Curricula {
		if seen[cur.Name] {
			return core.NewValidationError(
				errors.New("invalid curriculum catalog"),
				core.FieldError{Field: "name", Error: "duplicate curriculum " + cur.Name},
			)
		}
		seen[cur.Name] = true
	}
	return nil
}

func (c Catalog) Get(name string) (Curriculum, bool) {
	for _, cur := range c.Curricula {
		if cur.Name == name {
			return cur, true
		}
	}
	return Curriculum{}, false
}

func (cur Curriculum) Package(code string) (Package, bool) {
	for _, pkg := range cur.Packages {
		if pkg.Code == code {
			return pkg, true
		}
	}
	return Package{}, false
}

// DefaultGrade is the grade assigned when a package is picked; package
// selection does not itself ask for one.
func (cur Curriculum) DefaultGrade() string {
	return cur.Grades[0]
}

// MakePackageKey composes the normalized package identifier from a
// curriculum name and a package code: "Cambridge" (case-insensitive) maps to
// the "CAM" prefix, anything else to "GES".
func MakePackageKey(curriculumName, pkgCode string) string {
	prefix := "GES"
	if strings.ToUpper(curriculumName) == "CAMBRIDGE" {
		prefix = "CAM"
	}
	return prefix + "-" + pkgCode
}
