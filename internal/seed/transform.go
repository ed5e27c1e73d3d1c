package seed

import (
	"fmt"
	"regexp"
	"strings"

	"contact-seeder/internal/common/errors"
	"contact-seeder/internal/models"
)

// A token starts at an ASCII word character and runs to the next whitespace.
var wordToken = regexp.MustCompile(`\w\S*`)

// TitleCase upper-cases the first byte of every token and lower-cases the rest
// with full Unicode rules. A token can only start at an ASCII word character,
// so "élodie" becomes "éLodie" while "JOSÉ" becomes "José".
func TitleCase(s string) string {
	return wordToken.ReplaceAllStringFunc(s, func(tok string) string {
		return string(upperASCII(tok[0])) + strings.ToLower(tok[1:])
	})
}

func upperASCII(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// Transform maps one record to an object of className.
func Transform(className string, rec models.RawUserRecord) (models.OutputObject, error) {
	name, ok := rec.PersonName()
	if !ok {
		return models.OutputObject{}, fmt.Errorf("record has no name")
	}
	return models.OutputObject{
		ClassName: className,
		Fields:    models.ObjectFields{Name: TitleCase(name.FullName())},
	}, nil
}

// TransformAll maps every record, failing on the first malformed one.
func TransformAll(className string, recs []models.RawUserRecord) ([]models.OutputObject, error) {
	out := make([]models.OutputObject, 0, len(recs))
	for i, rec := range recs {
		obj, err := Transform(className, rec)
		if err != nil {
			return nil, errors.NewUpstreamResponseError("randomuser", fmt.Errorf("result %d: %w", i, err))
		}
		out = append(out, obj)
	}
	return out, nil
}
