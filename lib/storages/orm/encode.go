package orm

import (
	"strings"

	"github.com/pkg/errors"
)

func decodeDiagnostic(v string) error {
	if v == "" {
		return nil
	}

	return errors.New(v)
}

func compositeKey(ids ...string) string {
	return strings.Join(ids, "\n")
}
