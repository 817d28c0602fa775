// Package typesim reports pairs of type declarations whose member lists are
// within a given edit distance of each other.
package typesim

import (
	"errors"
	"fmt"

	"github.com/panbanda/dryscan/pkg/models"
)

// ErrMalformedMember is returned when a member has no recoverable identifier.
var ErrMalformedMember = errors.New("malformed member")

// ExtractSignature returns the member identifiers of decl: all methods, then
// every variable of every field, then all properties, each group in source
// order. Identifiers are used verbatim.
//
// On a malformed member extraction stops; the identifiers collected so far are
// returned together with an error wrapping ErrMalformedMember.
func ExtractSignature(decl models.TypeDecl) ([]string, error) {
	sig := make([]string, 0, len(decl.Members))

	for _, m := range decl.Members {
		if m.Kind != models.MemberMethod {
			continue
		}
		if m.Name == "" {
			return sig, malformed(decl, m)
		}
		sig = append(sig, m.Name)
	}

	for _, m := range decl.Members {
		if m.Kind != models.MemberField {
			continue
		}
		if len(m.Variables) == 0 {
			return sig, malformed(decl, m)
		}
		for _, v := range m.Variables {
			if v == "" {
				return sig, malformed(decl, m)
			}
			sig = append(sig, v)
		}
	}

	for _, m := range decl.Members {
		if m.Kind != models.MemberProperty {
			continue
		}
		if m.Name == "" {
			return sig, malformed(decl, m)
		}
		sig = append(sig, m.Name)
	}

	return sig, nil
}

func malformed(decl models.TypeDecl, m models.Member) error {
	return fmt.Errorf("%w: %s without identifier at %s:%d in type %s",
		ErrMalformedMember, m.Kind, decl.File, m.Line, decl.Name)
}
