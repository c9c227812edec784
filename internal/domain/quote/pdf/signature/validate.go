package signature

import (
	"bytes"
	"strings"
)

// Validation is the result of inspecting a document's signature stamp. It
// only reports what the metadata claims; see the package documentation.
type Validation struct {
	Valid   bool     `json:"valid"`
	State   State    `json:"state"`
	Title   string   `json:"title,omitempty"`
	Signers []Signer `json:"signers,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func Validate(doc []byte) Validation {
	v := Validation{State: StateUnsigned}
	if !bytes.HasPrefix(doc, []byte("%PDF-")) {
		v.Errors = append(v.Errors, "not a PDF document")
		return v
	}

	title, ok := infoString(doc, infoTitleKey)
	v.Title = title
	if !ok || !strings.HasSuffix(title, TitleSuffix) {
		v.Errors = append(v.Errors, "document is not marked as signed")
		return v
	}

	keywords, _ := infoString(doc, infoKeywordsKey)
	cert, err := decodeCertificate(keywords)
	if err != nil {
		v.Errors = append(v.Errors, err.Error())
		return v
	}
	if strings.TrimSuffix(title, TitleSuffix) != cert.Title {
		v.Errors = append(v.Errors, "certificate title does not match document title")
	}
	if len(cert.Signers) == 0 {
		v.Errors = append(v.Errors, "certificate lists no signers")
	}

	v.Signers = cert.Signers
	v.State = stateFor(len(cert.Signers))
	v.Valid = len(v.Errors) == 0
	return v
}
