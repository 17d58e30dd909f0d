// Package seed loads starter books and members from YAML. A default data
// set is embedded in the binary; an operator can point to their own file.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/biblioteca-api/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultData []byte

// Data is the content of a seed file.
type Data struct {
	Books   []domain.BookFields   `yaml:"books"`
	Members []domain.MemberFields `yaml:"members"`
}

// Default returns the embedded starter data set.
func Default() (Data, error) {
	return Parse(bytes.NewReader(defaultData))
}

// LoadFile reads a seed file from disk. An empty path selects the embedded
// default.
func LoadFile(path string) (Data, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return Data{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	d, err := Parse(f)
	if err != nil {
		return Data{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes and validates seed data. Unknown keys are rejected so a
// misspelt field does not silently produce an empty value.
func Parse(r io.Reader) (Data, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var d Data
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return Data{}, fmt.Errorf("failed to decode seed data: %w", err)
	}

	v := domain.NewValidator()
	for i := range d.Books {
		d.Books[i] = d.Books[i].Trim()
		if err := v.Struct(d.Books[i]); err != nil {
			return Data{}, fieldError(fmt.Sprintf("books[%d]", i), err)
		}
	}
	for i := range d.Members {
		d.Members[i] = d.Members[i].Trim()
		if err := v.Struct(d.Members[i]); err != nil {
			return Data{}, fieldError(fmt.Sprintf("members[%d]", i), err)
		}
	}
	return d, nil
}

func fieldError(entry string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(
			entry+"."+fe.Field(),
			fmt.Sprintf("failed %q rule", fe.Tag()),
			domain.ErrInvalidFormat,
		)
	}
	return domain.NewValidationError(entry, err.Error(), nil)
}
